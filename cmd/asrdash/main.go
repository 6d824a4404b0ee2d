// Command asrdash serves the ASR loudspeaker evaluation dashboard.
//
//	asrdash [--config config.yml] [--env-file .env]
//	asrdash --repair    convert mislabeled speaker_0m recordings and exit
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/souadELmaazouzi/audio-processing-and-ui/bootstrap"
	"github.com/souadELmaazouzi/audio-processing-and-ui/config"
	"github.com/souadELmaazouzi/audio-processing-and-ui/version"
)

const serviceName = "asrdash"

func main() {
	flags := pflag.NewFlagSet(serviceName, pflag.ExitOnError)
	configFile := flags.StringP("config", "c", "", "config file (default: search ./cmd/asrdash, ./config, .)")
	envFile := flags.String("env-file", "", ".env file loaded before environment overrides")
	repair := flags.Bool("repair", false, "convert mislabeled speaker_0m recordings and exit")
	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println(version.Current())
		return
	}

	if err := run(*configFile, *envFile, *repair); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(configFile, envFile string, repair bool) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	var cfg config.AppConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.Current().Short()
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	w := newWiring(app)
	if err := w.registerInfrastructure(); err != nil {
		return err
	}

	ctx := context.Background()
	if repair {
		return app.RunTask(ctx, w.repair)
	}
	app.OnConfigure(w.configure)
	return app.Run(ctx)
}
