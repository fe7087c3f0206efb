package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/llave/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   database host
//	-p int      database port
//	-n string   database name
//	-u string   database user
//	-w string   database password
//	-l          require SSL for database connections
//	-s string   session token HMAC secret key
//	-t int      session token validity, hours
//	-i string   TOTP issuer name
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags owned by
// the JSON layer. The validity flag is accepted as an integer in hours and
// converted to a time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-p", "-n", "-u", "-w", "-l", "-s", "-t", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DBHost, "d", config.DBHost, "database host")
	fs.IntVar(&config.DBPort, "p", config.DBPort, "database port")
	fs.StringVar(&config.DBName, "n", config.DBName, "database name")
	fs.StringVar(&config.DBUser, "u", config.DBUser, "database user")
	fs.StringVar(&config.DBPassword, "w", config.DBPassword, "database password")
	fs.BoolVar(&config.DBSSL, "l", config.DBSSL, "require SSL for database connections")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidity.Hours()), "token validity (in hours)")

	fs.StringVar(&config.TOTPIssuer, "i", config.TOTPIssuer, "TOTP issuer")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Hour
}
