package loader

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/util"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	ConfLocalLoader = "local"
	ConfHttpLoader  = "http"
	ConfPathSep     = "|"
)

type ConfLoader func(path string, v *viper.Viper) *util.Err

const _HttpTimeout = time.Second * 10

var (
	_TypeToLoader = make(map[string]ConfLoader)
	_ConfRoot     = exeDir()
)

// exeDir 默认配置根目录为可执行文件所在目录
func exeDir() string {
	p, e := os.Executable()
	if e != nil {
		return "."
	}
	return filepath.ToSlash(filepath.Dir(p))
}

func init() {
	SetConfLoader(ConfLocalLoader, confLocalLoader)
	SetConfLoader(ConfHttpLoader, confHttpLoader)
}

func SetConfRoot(p string) {
	_ConfRoot = p
}

// LoadConf 按顺序加载多个配置源, 后加载的覆盖先加载的.
// path 格式为 "类型|路径", 如 local|conf/tempo.yml
func LoadConf(conf any, paths ...string) *util.Err {
	vpr, err := Viper(paths...)
	if err != nil {
		return err
	}
	return Decode(vpr, conf)
}

// Viper 加载配置源, 返回合并后的 viper
func Viper(paths ...string) (*viper.Viper, *util.Err) {
	if len(paths) == 0 {
		return nil, util.NewErr(util.EcParamsErr, util.M{
			"paths": paths,
		})
	}
	vpr := viper.New()
	vpr.SetConfigType("yaml")
	loaded := 0
	for _, p := range paths {
		loaderType, filePath, ok := strings.Cut(p, ConfPathSep)
		if !ok {
			tempo.Warn2(util.EcParamsErr, util.M{
				"path": p,
			})
			continue
		}
		loader, ok := _TypeToLoader[loaderType]
		if !ok {
			tempo.Warn2(util.EcNotExist, util.M{
				"loader type": loaderType,
			})
			continue
		}
		err := loader(filePath, vpr)
		if err != nil {
			tempo.Warn(err)
			continue
		}
		loaded++
	}
	if loaded == 0 {
		return nil, util.NewErr(util.EcNotExist, util.M{
			"paths": paths,
		})
	}
	return vpr, nil
}

// Decode viper 配置解码到 conf, 支持 "1s" 形式的时长
func Decode(vpr *viper.Viper, conf any) *util.Err {
	e := vpr.Unmarshal(conf, func(c *mapstructure.DecoderConfig) {
		c.WeaklyTypedInput = true
		c.TagName = "mapstructure"
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if e != nil {
		return util.WrapErr(util.EcUnmarshallErr, e)
	}
	return nil
}

func SetConfLoader(typ string, loader ConfLoader) {
	_TypeToLoader[typ] = loader
}

func confLocalLoader(p string, v *viper.Viper) *util.Err {
	if !filepath.IsAbs(p) {
		p = filepath.Join(_ConfRoot, p)
	}
	data, e := os.ReadFile(p)
	if e != nil {
		return util.NewErr(util.EcIo, util.M{
			"error": e.Error(),
			"path":  p,
		})
	}
	return readConf(v, configType(p), p, data)
}

func confHttpLoader(p string, v *viper.Viper) *util.Err {
	client := http.Client{
		Timeout: _HttpTimeout,
	}
	res, e := client.Get(p)
	if e != nil {
		return util.NewErr(util.EcIo, util.M{
			"path":  p,
			"error": e.Error(),
		})
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return util.NewErr(util.EcIo, util.M{
			"path":   p,
			"status": res.StatusCode,
		})
	}
	data, e := io.ReadAll(res.Body)
	if e != nil {
		return util.NewErr(util.EcIo, util.M{
			"path":  p,
			"error": e.Error(),
		})
	}
	return readConf(v, configType(p), p, data)
}

func readConf(v *viper.Viper, typ, p string, data []byte) *util.Err {
	v.SetConfigType(typ)
	e := v.MergeConfig(bytes.NewReader(data))
	if e != nil {
		return util.NewErr(util.EcParseErr, util.M{
			"error": e.Error(),
			"path":  p,
		})
	}
	return nil
}

func configType(p string) string {
	ext := strings.TrimPrefix(path.Ext(p), ".")
	switch ext {
	case "yml", "":
		return "yaml"
	}
	return ext
}

// LocalPaths 没有指定类型的路径按 local 处理
func LocalPaths(paths ...string) []string {
	res := make([]string, len(paths))
	for i, p := range paths {
		if !strings.Contains(p, ConfPathSep) {
			p = ConfLocalLoader + ConfPathSep + p
		}
		res[i] = p
	}
	return res
}
