package config

import (
	"github.com/spf13/viper"
)

// Config is populated from environment variables; in a cluster the DB
// and AWS settings come from the pod environment, and LocalStack covers
// local development.
type Config struct {
	DBHost             string `mapstructure:"DB_HOST"`
	DBPort             string `mapstructure:"DB_PORT"`
	DBUser             string `mapstructure:"DB_USER"`
	DBPassword         string `mapstructure:"DB_PASSWORD"`
	DBName             string `mapstructure:"DB_NAME"`
	ServerPort         string `mapstructure:"SERVER_PORT"`
	AWSRegion          string `mapstructure:"AWS_REGION"`
	AWSEndpoint        string `mapstructure:"AWS_ENDPOINT"`
	NotifySQSQueueURL  string `mapstructure:"NOTIFY_SQS_QUEUE_URL"`
	PayrollEngineURL   string `mapstructure:"PAYROLL_ENGINE_URL"`
	AccountingEmail    string `mapstructure:"ACCOUNTING_EMAIL"`
	EmailSender        string `mapstructure:"EMAIL_SENDER"`
	OTLPEndpoint       string `mapstructure:"OTLP_ENDPOINT"`
	IsLocalDev         bool   `mapstructure:"IS_LOCAL_DEV"`
}

// LoadConfig reads configuration from the environment with local
// defaults.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "payroll_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("NOTIFY_SQS_QUEUE_URL", "http://localstack:4566/000000000000/payout-notify-queue")
	viper.SetDefault("PAYROLL_ENGINE_URL", "http://localhost:8081/payouts/generate")
	viper.SetDefault("ACCOUNTING_EMAIL", "accounting@payroll-service.com")
	viper.SetDefault("EMAIL_SENDER", "payouts@payroll-service.com")
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	viper.SetDefault("IS_LOCAL_DEV", false)

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
