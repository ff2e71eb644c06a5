package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ultramdmemo/internal/apperr"
)

type fakeProvisioner struct {
	runtimeErr, cliErr error
	steps              []string
}

func (f *fakeProvisioner) EnsureRuntime(context.Context, Progress) error {
	f.steps = append(f.steps, "runtime")
	return f.runtimeErr
}

func (f *fakeProvisioner) EnsureCliPackage(context.Context, Progress) error {
	f.steps = append(f.steps, "cli")
	return f.cliErr
}

type fakeLogin struct {
	loggedIn []bool
	loginErr error
	checks   int
	logins   int
}

func (f *fakeLogin) IsLoggedIn(context.Context) (bool, error) {
	v := f.loggedIn[f.checks]
	f.checks++
	return v, nil
}

func (f *fakeLogin) RunLogin(context.Context, Progress) error {
	f.logins++
	return f.loginErr
}

func TestBootstrap_AlreadyLoggedIn(t *testing.T) {
	prov := &fakeProvisioner{}
	auth := &fakeLogin{loggedIn: []bool{true}}

	ok, err := Bootstrap(context.Background(), prov, auth, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"runtime", "cli"}, prov.steps)
	require.Zero(t, auth.logins)
}

func TestBootstrap_RunsLoginThenRechecks(t *testing.T) {
	prov := &fakeProvisioner{}
	auth := &fakeLogin{loggedIn: []bool{false, true}}

	ok, err := Bootstrap(context.Background(), prov, auth, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, auth.logins)
	require.Equal(t, 2, auth.checks)
}

func TestBootstrap_StopsAtFailingStage(t *testing.T) {
	prov := &fakeProvisioner{runtimeErr: apperr.NewSetupFailed(apperr.StageDownload, "fetch", errors.New("offline"))}
	auth := &fakeLogin{}

	_, err := Bootstrap(context.Background(), prov, auth, nil)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperr.StageDownload, appErr.Stage)
	require.Equal(t, []string{"runtime"}, prov.steps)
	require.Zero(t, auth.checks)
}

func TestBootstrap_LoginTimeoutPropagates(t *testing.T) {
	prov := &fakeProvisioner{}
	auth := &fakeLogin{loggedIn: []bool{false}, loginErr: apperr.NewLoginTimeout(0)}

	ok, err := Bootstrap(context.Background(), prov, auth, nil)
	require.False(t, ok)
	require.True(t, apperr.Is(err, apperr.LoginTimeout))
}

func TestChanProgress_DropsWhenFull(t *testing.T) {
	ch := make(chan string, 1)
	p := ChanProgress(ch)

	p.Report("first")
	p.Report("dropped")

	require.Equal(t, "first", <-ch)
	require.Empty(t, ch)
}
