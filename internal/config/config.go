package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBType              string        `env:"DBType" envDefault:"sqlite"`
	DSNURL              string        `env:"DSN_URL" envDefault:""`
	DBUser              string        `env:"DBUser" envDefault:""`
	DBPassword          string        `env:"DBPassword" envDefault:""`
	DBAddr              string        `env:"DBAddr" envDefault:""`
	DBName              string        `env:"DBName" envDefault:"accounts"`
	DBPath              string        `env:"DBPath" envDefault:"datas/accounts.db"`
	DBPort              string        `env:"DBPort" envDefault:"3306"`
	DBKeepAliveInterval time.Duration `env:"DB_KEEPALIVE_INTERVAL" envDefault:"7h"`

	StorageType          string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageLocalDir      string `env:"STORAGE_LOCAL_DIR" envDefault:"uploads"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"/uploads"`

	// S3 兼容存储配置
	StorageS3Region          string `env:"STORAGE_S3_REGION"`
	StorageS3Bucket          string `env:"STORAGE_S3_BUCKET"`
	StorageS3Prefix          string `env:"STORAGE_S3_PREFIX"`
	StorageS3Endpoint        string `env:"STORAGE_S3_ENDPOINT"`
	StorageS3AccessKeyID     string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	StorageS3SecretAccessKey string `env:"STORAGE_S3_SECRET_ACCESS_KEY"`
	StorageS3SessionToken    string `env:"STORAGE_S3_SESSION_TOKEN"`
	StorageS3ForcePathStyle  bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// 阿里云 OSS 存储配置
	StorageOSSEndpoint        string `env:"STORAGE_OSS_ENDPOINT"`
	StorageOSSBucket          string `env:"STORAGE_OSS_BUCKET"`
	StorageOSSPrefix          string `env:"STORAGE_OSS_PREFIX"`
	StorageOSSAccessKeyID     string `env:"STORAGE_OSS_ACCESS_KEY_ID"`
	StorageOSSAccessKeySecret string `env:"STORAGE_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	StorageCOSBucketURL string `env:"STORAGE_COS_BUCKET_URL"`
	StorageCOSPrefix    string `env:"STORAGE_COS_PREFIX"`
	StorageCOSSecretID  string `env:"STORAGE_COS_SECRET_ID"`
	StorageCOSSecretKey string `env:"STORAGE_COS_SECRET_KEY"`

	// Cloudflare R2 存储配置
	StorageR2AccountID       string `env:"STORAGE_R2_ACCOUNT_ID"`
	StorageR2Endpoint        string `env:"STORAGE_R2_ENDPOINT"`
	StorageR2Region          string `env:"STORAGE_R2_REGION" envDefault:"auto"`
	StorageR2Bucket          string `env:"STORAGE_R2_BUCKET"`
	StorageR2Prefix          string `env:"STORAGE_R2_PREFIX"`
	StorageR2AccessKeyID     string `env:"STORAGE_R2_ACCESS_KEY_ID"`
	StorageR2SecretAccessKey string `env:"STORAGE_R2_SECRET_ACCESS_KEY"`

	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	CORSOrigin     string `env:"CORS_ORIGIN" envDefault:"*"`
	FrontendDir    string `env:"FRONTEND_DIR" envDefault:""`

	// tokens always live one hour, see auth.DefaultTokenTTL
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"accounts"`
	// TokenVerifyMode forces every protected route into "strict" or
	// "collapsed" failure reporting. Empty keeps the per-route defaults.
	TokenVerifyMode string `env:"TOKEN_VERIFY_MODE" envDefault:""`
	BcryptCost      int    `env:"BCRYPT_COST" envDefault:"10"`

	// 默认管理员账户
	SeedSuperAdminSurnom   string `env:"SURNOM_SUPERADMIN"`
	SeedSuperAdminEmail    string `env:"EMAIL_SUPERADMIN"`
	SeedSuperAdminPassword string `env:"PASSWORD_SUPERADMIN"`
	SeedAdminSurnom        string `env:"SURNOM_ADMIN"`
	SeedAdminEmail         string `env:"EMAIL_ADMIN"`
	SeedAdminPassword      string `env:"PASSWORD_ADMIN"`
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	logrus.WithFields(logrus.Fields{
		"db_type":      Conf.DBType,
		"storage_type": Conf.StorageType,
		"http_port":    Conf.HTTPPort,
	}).Debug("config parsed")
	return Conf, nil
}
