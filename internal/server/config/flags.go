package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/daybook/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t int        access token validity, minutes
//	-r int        refresh token validity, minutes
//	-z string     display timezone (IANA name)
//	-e int        exported event duration, minutes
//	-i int        import page size
//	-n string     sync cron spec (empty disables)
//	-gid string   Google OAuth client ID
//	-gsec string  Google OAuth client secret
//	-gurl string  Google OAuth redirect URL
//	-cal string   Google calendar ID
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-r", "-z", "-e", "-i", "-n", "-gid", "-gsec", "-gurl", "-cal",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.DisplayTimezone, "z", config.DisplayTimezone, "display timezone")
	exportEventDuration := fs.Int("e", int(config.ExportEventDuration.Minutes()), "export_event_duration (in minutes)")
	fs.Int64Var(&config.ImportPageSize, "i", config.ImportPageSize, "import page size")
	fs.StringVar(&config.SyncCron, "n", config.SyncCron, "sync cron spec")

	fs.StringVar(&config.GoogleClientID, "gid", config.GoogleClientID, "Google OAuth client ID")
	fs.StringVar(&config.GoogleClientSecret, "gsec", config.GoogleClientSecret, "Google OAuth client secret")
	fs.StringVar(&config.GoogleRedirectURL, "gurl", config.GoogleRedirectURL, "Google OAuth redirect URL")
	fs.StringVar(&config.CalendarID, "cal", config.CalendarID, "Google calendar ID")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.ExportEventDuration = time.Duration(*exportEventDuration) * time.Minute
}
