package config

import (
	"database/sql"
	"errors"
	"strings"

	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
	"tutorial-service/constant"
)

type Config struct {
	MinIOBucket string        `yaml:"minio_bucket"`
	App         App           `yaml:"app"`
	DB          *sql.DB       `yaml:"db"`
	Queue       *RabbitMQ     `yaml:"rabbitmq"`
	Storage     *minio.Client `yaml:"storage"`
	Server      Server        `yaml:"server"`
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
}

func (a App) IsProduction() bool {
	return a.Environment == constant.EnvironmentProduction.String()
}

func (a App) IsDevelop() bool {
	return a.Environment == constant.EnvironmentDevelop.String()
}

type Server struct {
	HttpPort    string   `yaml:"http_port"`
	Workers     int      `yaml:"workers"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type RabbitMQ struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	ExchangeName string `json:"exchange_name"`
	Kind         string `json:"kind"`
	QueueName    string `json:"queue_name"`
	RoutingKey   string `json:"routing_key"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", constant.EnvironmentDevelop.String())
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.workers", 1)
	v.SetDefault("server.cors_origins", []string{"http://localhost:8081"})
	v.SetDefault("rabbitmq_host", "localhost")
	v.SetDefault("rabbitmq_port", 5672)
	v.SetDefault("rabbitmq_kind", "topic")
	v.SetDefault("rabbitmq_exchange", constant.DefaultExchangeName)
	v.SetDefault("rabbitmq_queue", constant.DefaultQueueName)
	v.SetDefault("rabbitmq_routing_key", constant.DefaultRoutingKey)
	v.SetDefault("minio.url", "localhost:9000")
	v.SetDefault("minio.bucket", "tutorials")
	v.SetDefault("minio.secure", false)
}

// Load reads config.yaml from path. Environment variables override file values,
// with dots in keys replaced by underscores (server.port -> SERVER_PORT).
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	db, err := sql.Open("postgres", v.GetString("postgresql_host"))
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Host:         v.GetString("rabbitmq_host"),
		Port:         v.GetInt("rabbitmq_port"),
		User:         v.GetString("rabbitmq_user"),
		Pass:         v.GetString("rabbitmq_pass"),
		Kind:         v.GetString("rabbitmq_kind"),
		ExchangeName: v.GetString("rabbitmq_exchange"),
		QueueName:    v.GetString("rabbitmq_queue"),
		RoutingKey:   v.GetString("rabbitmq_routing_key"),
	}

	minioClient, err := minio.New(v.GetString("minio.url"), &minio.Options{
		Creds:  credentials.NewStaticV4(v.GetString("minio.access_id"), v.GetString("minio.secret_access_key"), ""),
		Secure: v.GetBool("minio.secure"),
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Config{
		MinIOBucket: v.GetString("minio.bucket"),
		App: App{
			Environment: v.GetString("app.environment"),
			Host:        v.GetString("app.host"),
			Protocol:    v.GetString("app.protocol"),
		},
		Server: Server{
			HttpPort:    v.GetString("server.port"),
			Workers:     v.GetInt("server.workers"),
			CORSOrigins: v.GetStringSlice("server.cors_origins"),
		},
		DB:      db,
		Queue:   rabbitmq,
		Storage: minioClient,
	}, nil
}
