//go:build linux

package notify

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"

	methodNotify = notificationsName + ".Notify"
	methodClose  = notificationsName + ".CloseNotification"

	// callTimeout bounds a call to a notification daemon that is slow to
	// start or answer.
	callTimeout = 2 * time.Second
)

// busCaller is the part of dbus.BusObject the notifier needs.
type busCaller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

type dbusNotifier struct {
	obj     busCaller
	timeout time.Duration
}

// New connects to the session bus. Without one, notifications are
// silently dropped.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return stubNotifier{}, nil //nolint:nilerr // no session bus means no notifications
	}
	return &dbusNotifier{
		obj:     conn.Object(notificationsName, notificationsPath),
		timeout: callTimeout,
	}, nil
}

// notifyArgs lays n out as Notify(app_name, replaces_id, app_icon, summary,
// body, actions, hints, expire_timeout).
func notifyArgs(n Notification) []any {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(appName),
	}
	return []any{appName, n.ReplacesID, n.Icon, n.Title, n.Body, []string{}, hints, n.Timeout}
}

func (d *dbusNotifier) Notify(n Notification) (uint32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var id uint32
	if err := d.obj.CallWithContext(ctx, methodNotify, 0, notifyArgs(n)...).Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (d *dbusNotifier) Close(id uint32) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return d.obj.CallWithContext(ctx, methodClose, 0, id).Err
}
