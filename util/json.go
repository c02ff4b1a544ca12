package util

import jsoniter "github.com/json-iterator/go"

// 键排序, 保证日志参数与 /status 输出稳定
var _Json = jsoniter.Config{
	UseNumber:   true,
	SortMapKeys: true,
}.Froze()

func JsonMarshal(o any) ([]byte, *Err) {
	bytes, e := _Json.Marshal(o)
	if e != nil {
		return nil, WrapErr(EcMarshallErr, e)
	}
	return bytes, nil
}

func JsonUnmarshal(bytes []byte, o any) *Err {
	if e := _Json.Unmarshal(bytes, o); e != nil {
		return WrapErr(EcUnmarshallErr, e)
	}
	return nil
}
