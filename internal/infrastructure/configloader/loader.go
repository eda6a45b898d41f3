// Package configloader 负责加载 YAML 配置、合并 .env 与环境变量覆盖，并产出校验后的 RuntimeConfig。
package configloader

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	_ "github.com/go-kratos/kratos/v2/encoding/yaml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	envConfPath       = "CONF_PATH"
	envServiceName    = "SERVICE_NAME"
	envServiceVersion = "SERVICE_VERSION"
	envAppEnv         = "APP_ENV"
	envDatabaseURL    = "DATABASE_URL"
	envPort           = "PORT"
	envJWTSecret      = "JWT_SECRET"
)

var envFileNames = []string{".env.local", ".env"}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Params 包含加载配置所需的运行时输入参数。
type Params struct {
	ConfPath string // 配置文件路径（可为空，使用默认值）
}

// ServiceMetadata 保存服务标识信息，供日志和可观测性组件使用。
type ServiceMetadata struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// BuildError 捕获配置构建过程中的上下文错误信息。
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

// Error 实现 error 接口，提供包含上下文的错误信息。
func (e BuildError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap 暴露底层错误，支持 errors.Is/As 链式查询。
func (e BuildError) Unwrap() error {
	return e.Err
}

// Load 从配置文件构建 RuntimeConfig。
//
// 流程：
// 1. 解析配置路径（应用回退规则）并加载 .env 文件
// 2. 读取 YAML 并扫描到文件结构
// 3. 应用环境变量覆盖（DATABASE_URL、PORT、JWT_SECRET）
// 4. 规范化时长与默认值
// 5. 使用 validator 校验必填项与取值范围
func Load(params Params) (*RuntimeConfig, error) {
	confPath := ResolveConfPath(params.ConfPath)
	loadEnvFiles(confPath)

	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, BuildError{Stage: "load", Path: confPath, Err: err}
	}
	defer c.Close()

	var fc fileConfig
	if err := c.Scan(&fc); err != nil {
		return nil, BuildError{Stage: "scan", Path: confPath, Err: err}
	}
	applyEnvOverrides(&fc)

	rc, err := normalize(&fc)
	if err != nil {
		return nil, BuildError{Stage: "normalize", Path: confPath, Err: err}
	}
	rc.Service = buildServiceMetadata()

	if err := validatorInstance().Struct(&rc); err != nil {
		return nil, BuildError{Stage: "validate", Path: confPath, Err: err}
	}
	return &rc, nil
}

// ResolveConfPath 应用回退规则确定要加载的配置目录/文件路径。
// 优先级：显式传入路径 > CONF_PATH 环境变量 > 默认路径。
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// applyEnvOverrides 应用环境变量覆盖配置文件中的特定字段，环境变量为空时保留文件原值。
//
//   - DATABASE_URL: 覆盖 data.postgres.dsn
//   - PORT: 覆盖 server.http.addr 的端口部分（保留 host），用于 Cloud Run 动态端口
//   - JWT_SECRET: 覆盖 server.auth.jwt_secret，避免密钥落盘
func applyEnvOverrides(fc *fileConfig) {
	if fc == nil {
		return
	}
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		fc.Data.Postgres.DSN = dsn
	}
	if port := os.Getenv(envPort); port != "" {
		fc.Server.HTTP.Addr = replacePort(fc.Server.HTTP.Addr, port)
	}
	if secret := os.Getenv(envJWTSecret); secret != "" {
		fc.Server.Auth.JWTSecret = secret
	}
}

// buildServiceMetadata 构建服务元信息，来源优先级：环境变量 > 默认值。
func buildServiceMetadata() ServiceMetadata {
	host, _ := os.Hostname()
	return ServiceMetadata{
		Name:        firstNonEmpty(os.Getenv(envServiceName), defaultServiceName),
		Version:     firstNonEmpty(os.Getenv(envServiceVersion), defaultServiceVersion),
		Environment: firstNonEmpty(os.Getenv(envAppEnv), defaultEnvironment),
		InstanceID:  firstNonEmpty(host, "unknown"),
	}
}

// loadEnvFiles best-effort 加载配置相关的 .env 文件，失败时忽略以保持幂等。
func loadEnvFiles(confPath string) {
	files := envFileCandidates(confPath)
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}

// envFileCandidates 按目录优先级（confPath 目录 -> 当前工作目录）返回存在的 .env 文件。
// godotenv 按列表顺序加载，已设置的变量不会被后续文件覆盖。
func envFileCandidates(confPath string) []string {
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range orderedDirs(confPath) {
		for _, name := range envFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			files = append(files, candidate)
			seen[candidate] = struct{}{}
		}
	}
	return files
}

func orderedDirs(confPath string) []string {
	var dirs []string
	appendUnique := func(path string) {
		if path == "" {
			return
		}
		clean := filepath.Clean(path)
		for _, existing := range dirs {
			if existing == clean {
				return
			}
		}
		dirs = append(dirs, clean)
	}

	if confPath != "" {
		if info, err := os.Stat(confPath); err == nil {
			if info.IsDir() {
				appendUnique(confPath)
			} else {
				appendUnique(filepath.Dir(confPath))
			}
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		appendUnique(cwd)
	}
	return dirs
}

// replacePort 替换地址中的端口部分，保留 host。
//   - "0.0.0.0:9090" -> "0.0.0.0:8080"
//   - "[::1]:9090" -> "[::1]:8080"
//   - "" 或解析失败 -> "0.0.0.0:8080"
func replacePort(addr, newPort string) string {
	if addr == "" {
		return "0.0.0.0:" + newPort
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "0.0.0.0:" + newPort
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return net.JoinHostPort(host, newPort)
}
