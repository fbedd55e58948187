// Package notifier delivers reminder text to the desktop tray app's local
// webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/logger"
)

var (
	// ErrTrayNotRunning is returned when no live tray process owns the lockfile
	ErrTrayNotRunning = errors.New("fastwell tray is not running")

	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Sender delivers a notification
type Sender interface {
	Notify(ctx context.Context, text string) error
}

// Tray posts notifications to the tray app whose port and shared secret are
// published in its lockfile.
type Tray struct {
	client *http.Client
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// endpoint is a validated lockfile entry
type endpoint struct {
	port   int
	pid    int
	secret string
}

func NewTray() *Tray {
	return &Tray{client: &http.Client{Timeout: 5 * time.Second}}
}

func (t *Tray) Notify(ctx context.Context, text string) error {
	dir, err := TrayConfigDir()
	if err != nil {
		return err
	}
	ep, err := readLockfile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}
	if err := checkProcess(ep.pid); err != nil {
		return err
	}
	return t.send(ctx, ep, WebhookPayload{Text: text, DurationMs: constants.NotificationDurationMs})
}

// TrayConfigDir returns the tray app's lockfile directory, honoring a
// lockfile_dir override in its settings.json.
func TrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayDir, "settings.json"))
	if err != nil {
		return trayDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err != nil {
		logger.Warn("Ignoring unreadable tray settings", "error", err)
		return trayDir, nil
	}
	if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
		return *store.Settings.LockfileDir, nil
	}
	return trayDir, nil
}

// readLockfile parses "port|pid|secret"
func readLockfile(path string) (endpoint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return endpoint{}, ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return endpoint{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return endpoint{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return endpoint{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return endpoint{}, errors.New("invalid process ID in lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return endpoint{}, errors.New("secret in lockfile is empty")
	}
	return endpoint{port: port, pid: pid, secret: secret}, nil
}

func checkProcess(pid int) error {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayExecutablePrefix) {
		return fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutablePrefix, process.Executable())
	}
	return nil
}

func (t *Tray) send(ctx context.Context, ep endpoint, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d", ep.port), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Fastwell-Secret", ep.secret)

	res, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(msg))
}

// Log writes notifications to Out and the app log. It stands in for the tray
// when the tray app is absent.
type Log struct {
	Out io.Writer
}

func (l Log) Notify(_ context.Context, text string) error {
	logger.Info("Reminder", "text", text)
	if l.Out != nil {
		_, err := fmt.Fprintln(l.Out, text)
		return err
	}
	return nil
}

// Fallback tries Primary and falls back to Secondary when the tray is not
// running.
type Fallback struct {
	Primary   Sender
	Secondary Sender
}

func (f Fallback) Notify(ctx context.Context, text string) error {
	err := f.Primary.Notify(ctx, text)
	if errors.Is(err, ErrTrayNotRunning) && f.Secondary != nil {
		return f.Secondary.Notify(ctx, text)
	}
	return err
}
