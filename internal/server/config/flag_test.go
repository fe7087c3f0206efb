package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", ":9999",
		"-d", "pg.internal",
		"-p", "15432",
		"-n", "llave_test",
		"-u", "svc",
		"-w", "pw",
		"-s", "flag-secret",
		"-t", "24",
		"-i", "Llave Test",
	}

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assert.Equal(t, ":9999", c.Addr)
	assert.Equal(t, "pg.internal", c.DBHost)
	assert.Equal(t, 15432, c.DBPort)
	assert.Equal(t, "llave_test", c.DBName)
	assert.Equal(t, "svc", c.DBUser)
	assert.Equal(t, "pw", c.DBPassword)
	assert.Equal(t, "flag-secret", c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.TokenValidity)
	assert.Equal(t, "Llave Test", c.TOTPIssuer)
}

func Test_parseFlags_IgnoresForeignFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-config", "/nope.json", "-a", ":7070"}

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assert.Equal(t, ":7070", c.Addr)
	assert.Equal(t, "localhost", c.DBHost)
}
