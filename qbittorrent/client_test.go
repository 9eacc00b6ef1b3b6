package qbittorrent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	loginErrs []error
	logins    int
	prefs     qbittorrent.AppPreferences
	prefsErr  error
	version   string
}

func (f *fakeAPI) LoginCtx(ctx context.Context) error {
	f.logins++
	if len(f.loginErrs) == 0 {
		return nil
	}
	err := f.loginErrs[0]
	f.loginErrs = f.loginErrs[1:]
	return err
}

func (f *fakeAPI) GetAppPreferencesCtx(ctx context.Context) (qbittorrent.AppPreferences, error) {
	return f.prefs, f.prefsErr
}

func (f *fakeAPI) GetAppVersionCtx(ctx context.Context) (string, error) {
	return f.version, nil
}

func TestConnectRetries(t *testing.T) {
	api := &fakeAPI{loginErrs: []error{errors.New("refused"), nil}}
	c := newClient(api, "http://qbt", zerolog.Nop(), WithRetryDelay(time.Millisecond))

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, 2, api.logins)
}

func TestConnectGivesUp(t *testing.T) {
	boom := errors.New("bad credentials")
	api := &fakeAPI{loginErrs: []error{boom, boom, boom}}
	c := newClient(api, "http://qbt", zerolog.Nop(), WithMaxRetries(1), WithRetryDelay(time.Millisecond))

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, api.logins)
}

func TestConnectCancelled(t *testing.T) {
	api := &fakeAPI{loginErrs: []error{errors.New("refused"), errors.New("refused")}}
	c := newClient(api, "http://qbt", zerolog.Nop(), WithRetryDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Connect(ctx), context.Canceled)
}

func TestDetect(t *testing.T) {
	api := &fakeAPI{version: "v4.6.2\n"}
	api.prefs.Locale = "uk"
	c := newClient(api, "http://qbt", zerolog.Nop())

	info, err := c.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Instance{URL: "http://qbt", Version: "v4.6.2", Locale: "uk"}, info)
}

func TestLocaleUnset(t *testing.T) {
	c := newClient(&fakeAPI{}, "http://qbt", zerolog.Nop())

	_, err := c.Locale(context.Background())
	assert.ErrorIs(t, err, ErrLocaleUnset)
}

func TestLocaleError(t *testing.T) {
	c := newClient(&fakeAPI{prefsErr: errors.New("403")}, "http://qbt", zerolog.Nop())

	_, err := c.Locale(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get preferences")
}
