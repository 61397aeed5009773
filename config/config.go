package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`
	DBHost  string `json:"dbhost"`
	DBPort  uint16 `json:"dbport"`
	DBName  string `json:"dbname"`
	DBUser  string `json:"dbuser"`
	DBPass  string `json:"dbpass"`

	// SMTP settings used by the mailer for appointment notifications.
	SMTPHost string `json:"smtphost"`
	SMTPPort int    `json:"smtpport"`
	SMTPUser string `json:"smtpuser"`
	SMTPPass string `json:"smtppass"`
	MailFrom string `json:"mailfrom"`

	// ReminderInterval is the polling interval, in minutes, of the
	// appointment reminder scheduler. Defaults to 60 when unset.
	ReminderInterval int `json:"reminderinterval"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// Load environment variables from .env file. A missing file is not
		// fatal: tests and containerized deployments inject env directly.
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}

		appPort, _ := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)
		smtpPort, _ := strconv.Atoi(os.Getenv("SMTPPORT"))
		reminderInterval, _ := strconv.Atoi(os.Getenv("REMINDERINTERVAL"))
		if reminderInterval <= 0 {
			reminderInterval = 60
		}

		// Initialize the Config struct with values from environment variables.
		config = &Config{
			AppName:          os.Getenv("APPNAME"),
			AppEnv:           os.Getenv("APPENV"),
			AppPort:          uint16(appPort),
			GinMode:          os.Getenv("GINMODE"),
			DBHost:           os.Getenv("DBHOST"),
			DBPort:           uint16(dbPort),
			DBName:           os.Getenv("DBNAME"),
			DBUser:           os.Getenv("DBUSER"),
			DBPass:           os.Getenv("DBPASS"),
			SMTPHost:         os.Getenv("SMTPHOST"),
			SMTPPort:         smtpPort,
			SMTPUser:         os.Getenv("SMTPUSER"),
			SMTPPass:         os.Getenv("SMTPPASS"),
			MailFrom:         os.Getenv("MAILFROM"),
			ReminderInterval: reminderInterval,
		}
	})
	return config
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
// In the test environment it opens an in-memory SQLite database instead so
// the suite runs without a MySQL server. TranslateError is enabled so
// duplicate-key violations surface as gorm.ErrDuplicatedKey on both drivers;
// the appointment slot uniqueness guarantee depends on it.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()
	gormCfg := &gorm.Config{TranslateError: true}

	if cfg.AppEnv == "test" || os.Getenv("APPENV") == "test" {
		return gorm.Open(sqlite.Open("file::memory:?cache=shared"), gormCfg)
	}

	// Build the Data Source Name (DSN) using the configuration values.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	// Open a database connection.
	db, err := gorm.Open(mysql.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}

	return db, nil
}
