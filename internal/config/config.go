package config

import (
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Platform PlatformConfig `mapstructure:"platform"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LedgerConfig 账本网络配置
type LedgerConfig struct {
	Network    string                    `mapstructure:"network"`     // 网络标识 (mainnet, testnet, local)
	ChainId    int64                     `mapstructure:"chain_id"`    // 链ID
	RpcUrl     string                    `mapstructure:"rpc_url"`     // RPC节点URL
	PrivateKey string                    `mapstructure:"private_key"` // 操作账户私钥
	DefaultGas uint64                    `mapstructure:"default_gas"` // 默认Gas预算
	TimeoutSec int                       `mapstructure:"timeout_sec"` // 单次调用超时（秒）
	Contracts  map[string]ContractConfig `mapstructure:"contracts"`   // 各业务域合约配置
}

// ContractConfig 单个合约配置
type ContractConfig struct {
	Address  string `mapstructure:"address"`   // 合约地址
	ABIPath  string `mapstructure:"abi_path"`  // ABI文件路径
	Enabled  bool   `mapstructure:"enabled"`   // 是否启用此合约
	BlockNum int64  `mapstructure:"block_num"` // 合约部署区块号
}

// SyncConfig 同步参数配置
type SyncConfig struct {
	BatchSize       int  `mapstructure:"batch_size"`       // 批量大小
	BatchDelayMs    int  `mapstructure:"batch_delay_ms"`   // 批次间延迟（毫秒）
	AutoStart       bool `mapstructure:"auto_start"`       // 启动时自动开启定时同步
	IntervalMinutes int  `mapstructure:"interval_minutes"` // 定时同步间隔（分钟）
	ReconcileSec    int  `mapstructure:"reconcile_sec"`    // 手续费复核任务间隔（秒）
}

// PlatformConfig 平台结算配置
type PlatformConfig struct {
	FeeBasisPoints int64 `mapstructure:"fee_basis_points"` // 平台手续费（基点，1bp=0.01%）
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/fundflow")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "fundflow")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("ledger.network", "testnet")
	viper.SetDefault("ledger.default_gas", 300000)
	viper.SetDefault("ledger.timeout_sec", 15)
	viper.SetDefault("sync.batch_size", 10)
	viper.SetDefault("sync.batch_delay_ms", 500)
	viper.SetDefault("sync.auto_start", false)
	viper.SetDefault("sync.interval_minutes", 30)
	viper.SetDefault("sync.reconcile_sec", 300)
	viper.SetDefault("platform.fee_basis_points", 250)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
