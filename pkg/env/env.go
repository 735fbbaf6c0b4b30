package env

import (
	"fmt"
	"os"
	"strconv"

	"testing"

	"github.com/joho/godotenv"
)

var dotEnvMap map[string]string

func init() {
	// A .env file is optional; real environment variables always win.
	m, err := godotenv.Read(".env")
	if err != nil {
		m = map[string]string{}
	}
	dotEnvMap = m
}

func getEnv(key string) string {
	value := dotEnvMap[key]
	if v := os.Getenv(key); v != "" {
		value = v
	}
	return value
}

func Default(key, def string) string {
	value := getEnv(key)
	if value == "" {
		return def
	}
	return value
}

func DefaultInt(key string, def int) int {
	value := getEnv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(fmt.Sprintf("`%s` is not an integer: %s", key, value))
	}
	return n
}

func RequiredNotEmpty(key string) string {
	value := getEnv(key)
	if value == "" {
		if !testing.Testing() {
			panic(fmt.Sprintf("`%s` is not set or is empty", key))
		}
	}
	return value
}
