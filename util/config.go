package util

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const Name = "plaza"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		ServerUrl          string `yaml:"serverUrl"`
		PageSize           int    `yaml:"pageSize"`
		RequestTimeoutSecs int    `yaml:"requestTimeoutSecs"`
	}
}

func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}

	// A .env next to the binary may carry the PLAZA_* variables
	_ = godotenv.Load()

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	var buf []byte
	var err error

	// Try to read from resolved path
	buf, err = os.ReadFile(configPath)
	if err != nil {
		// If file doesn't exist, use embedded config and create user config file
		log.Printf("Config file not found at %s, using embedded defaults", configPath)
		buf = embeddedConfig

		// Try to write default config to user config directory
		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Printf("Warning: could not write default config to %s: %v", userConfigPath, writeErr)
			} else {
				log.Printf("Created default config file at %s", userConfigPath)
			}
		}
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envServerUrl := os.Getenv("PLAZA_SERVERURL")
	envPageSize := os.Getenv("PLAZA_PAGESIZE")
	envTimeout := os.Getenv("PLAZA_REQUEST_TIMEOUT")

	if envServerUrl != "" {
		c.Conf.ServerUrl = envServerUrl
	}

	if envPageSize != "" {
		v, err := strconv.Atoi(envPageSize)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.PageSize = v
	}

	if envTimeout != "" {
		v, err := strconv.Atoi(envTimeout)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.RequestTimeoutSecs = v
	}

	if c.Conf.PageSize <= 0 {
		c.Conf.PageSize = 10
	}

	if c.Conf.RequestTimeoutSecs <= 0 {
		c.Conf.RequestTimeoutSecs = 30
	}

	return c, nil
}
