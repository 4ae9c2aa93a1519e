package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"notedav/internal/config"
	"notedav/internal/notefs"
	"notedav/internal/store"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the WebDAV server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(v)
		},
	}

	var flags *pflag.FlagSet = cmd.Flags()
	flags.String("database", "", "path to the SQLite database file")
	flags.String("host", "127.0.0.1", "address to bind")
	flags.Int("port", 4918, "port to bind")
	flags.String("username", "", "Basic Auth username")
	flags.String("password", "", "Basic Auth password")
	flags.String("user-id", "", "owning principal; defaults to username")

	for _, name := range []string{"database", "host", "port", "username", "password", "user-id"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	bindEnv(v, "database", "host", "port", "username", "password", "user-id")

	return cmd
}

func runServe(v *viper.Viper) error {
	cfg := config.Config{
		DatabasePath: v.GetString("database"),
		Host:         v.GetString("host"),
		Port:         v.GetInt("port"),
		Username:     v.GetString("username"),
		Password:     v.GetString("password"),
		UserID:       v.GetString("user-id"),
	}.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath, cfg.UserID)
	if err != nil {
		return fmt.Errorf("cmd: opening store: %w", err)
	}
	defer st.Close()

	srv := notefs.NewServer(st, cfg.Username, cfg.Password)
	log.Printf("notedav: serving %s on %s (user %s)", cfg.DatabasePath, cfg.Addr(), cfg.UserID)
	return srv.ListenAndServe(cfg.Addr())
}
