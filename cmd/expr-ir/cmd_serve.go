package main

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/orizon-lang/exprir/internal/server"
)

// serveEnv provides the environment for the serve command.
type serveEnv struct {
	root     *rootEnv
	flagAddr string
}

func getServeCmd(env *rootEnv) *cobra.Command {
	s := &serveEnv{root: env}
	ret := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /compile over HTTP/3",
		Args:  cobra.NoArgs,
		RunE:  s.runServeCmd,
	}
	ret.Flags().StringVar(&s.flagAddr, "addr", "", "UDP listen address (default from config)")
	return ret
}

func (s *serveEnv) runServeCmd(cmd *cobra.Command, args []string) error {
	env := s.root
	opts, err := env.options()
	if err != nil {
		return err
	}
	cfg := env.cfg.Server
	if s.flagAddr != "" {
		cfg.Addr = s.flagAddr
	}

	handler, err := server.New(opts, cfg.CacheSize, env.log)
	if err != nil {
		return err
	}

	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return err
	}
	hosts := []string{"localhost"}
	if host != "" {
		hosts = append(hosts, host)
	}
	tlsCfg, err := server.TLSConfig(cfg.CertFile, cfg.KeyFile, hosts)
	if err != nil {
		return err
	}
	if cfg.CertFile == "" {
		env.log.Warn("no cert_file configured, using a self-signed certificate")
	}

	srv := server.NewHTTP3Server(cfg.Addr, tlsCfg, handler)
	addr, err := srv.Start()
	if err != nil {
		return err
	}
	env.log.Info("serving on https://%s (HTTP/3)", addr)

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	<-ctx.Done()

	env.log.Info("shutting down")
	return srv.Stop()
}
