package fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/config"
	"ultramdmemo/internal/apppaths"
	"ultramdmemo/internal/setup"
)

var Module = fx.Options(
	fx.Provide(
		NewProvisionerConfig,
		setup.NewProvisioner,
		NewAuthenticatorConfig,
		setup.NewAuthenticator,
	),
)

type NewProvisionerConfigParams struct {
	fx.In

	Logger *zap.SugaredLogger
	Cfg    *config.Config
	Paths  apppaths.Paths
}

func NewProvisionerConfig(p NewProvisionerConfigParams) setup.ProvisionerConfig {
	return setup.ProvisionerConfig{
		Paths:          p.Paths,
		NodeVersion:    p.Cfg.NodeVersion,
		DistURL:        p.Cfg.NodeDistURL,
		CliPackage:     p.Cfg.CliPackage,
		InstallTimeout: p.Cfg.InstallTimeout,
		Logger:         p.Logger,
	}
}

type NewAuthenticatorConfigParams struct {
	fx.In

	Logger *zap.SugaredLogger
	Cfg    *config.Config
	Paths  apppaths.Paths
}

func NewAuthenticatorConfig(p NewAuthenticatorConfigParams) setup.AuthenticatorConfig {
	return setup.AuthenticatorConfig{
		Paths:           p.Paths,
		CredentialsPath: p.Cfg.CredentialsPath,
		ProbeTimeout:    p.Cfg.AuthProbeTimeout,
		VerifyTimeout:   p.Cfg.VerifyTimeout,
		PollInterval:    p.Cfg.LoginPollInterval,
		MaxPolls:        p.Cfg.LoginMaxPolls,
		Logger:          p.Logger,
	}
}
