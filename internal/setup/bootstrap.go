package setup

import "context"

type RuntimeProvisioner interface {
	EnsureRuntime(ctx context.Context, progress Progress) error
	EnsureCliPackage(ctx context.Context, progress Progress) error
}

type LoginManager interface {
	IsLoggedIn(ctx context.Context) (bool, error)
	RunLogin(ctx context.Context, progress Progress) error
}

var (
	_ RuntimeProvisioner = (*Provisioner)(nil)
	_ LoginManager       = (*Authenticator)(nil)
)

// Bootstrap runs the start-up sequence: runtime, CLI package, login check,
// and the browser login when needed. It reports whether the CLI ends up
// logged in. Errors from the provisioning steps keep their stage.
func Bootstrap(ctx context.Context, prov RuntimeProvisioner, auth LoginManager, progress Progress) (bool, error) {
	if err := prov.EnsureRuntime(ctx, progress); err != nil {
		return false, err
	}
	if err := prov.EnsureCliPackage(ctx, progress); err != nil {
		return false, err
	}

	ok, err := auth.IsLoggedIn(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		report(progress, "Logged in")
		return true, nil
	}

	report(progress, "Login required")
	if err := auth.RunLogin(ctx, progress); err != nil {
		return false, err
	}
	return auth.IsLoggedIn(ctx)
}
