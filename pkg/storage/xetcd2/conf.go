package xetcd2

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// LoadConfig 从配置文件加载客户端配置。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json），
// 加载后对缺省字段应用默认值，但不执行 Validate——
// 由 NewClient 统一校验，便于调用方加载后再覆盖字段。
//
// 文件内容为 Config 的平铺字段，例如：
//
//	endpoints:
//	  - http://node1:2379
//	  - http://node2:2379
//	username: root
//	requestTimeout: 3s
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: config path is empty", ErrNilConfig)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xetcd2: read config %s: %w", path, err)
	}

	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	return unmarshalConfig(data, parser)
}

// ParseConfig 从内存字节解析配置。format 为 "yaml"/"yml" 或 "json"。
// 与 LoadConfig 相同，应用默认值但不执行 Validate。
func ParseConfig(data []byte, format string) (*Config, error) {
	parser, err := parserByName(format)
	if err != nil {
		return nil, err
	}
	return unmarshalConfig(data, parser)
}

func unmarshalConfig(data []byte, parser koanf.Parser) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("xetcd2: parse config: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("xetcd2: unmarshal config: %w", err)
	}

	return cfg.applyDefaults(), nil
}

// parserFor 根据文件扩展名选择解析器。
func parserFor(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, err := parserByName(strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, fmt.Errorf("xetcd2: unsupported config extension %q", ext)
	}
	return p, nil
}

// parserByName 根据格式名选择解析器。
func parserByName(format string) (koanf.Parser, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Parser(), nil
	case "json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("xetcd2: unsupported config format %q", format)
	}
}
