package sid

import (
	"sync/atomic"

	"github.com/15mga/tempo/util"
	"github.com/bwmarrin/snowflake"
)

var _Node atomic.Pointer[snowflake.Node]

func init() {
	_ = SetNodeId(0)
}

// SetNodeId 重新绑定 snowflake 节点, 未设置时使用节点 0
func SetNodeId(id int64) *util.Err {
	node, e := snowflake.NewNode(id)
	if e != nil {
		return util.WrapErr(util.EcParamsErr, e)
	}
	_Node.Store(node)
	return nil
}

// GetId 链路追踪 id
func GetId() int64 {
	return _Node.Load().Generate().Int64()
}

func GetStrId() string {
	return _Node.Load().Generate().Base58()
}
