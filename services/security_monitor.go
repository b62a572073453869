package services

import (
	"sync"
	"time"
)

// Failed login alerting thresholds
const (
	FailedLoginWindow    = 10 * time.Minute
	FailedLoginThreshold = 5
	AlertCooldown        = time.Hour
	maxStoredAlerts      = 100
)

// SecurityEventMonitor counts failed office logins per client address and
// raises an alert when an address crosses FailedLoginThreshold within
// FailedLoginWindow.
type SecurityEventMonitor struct {
	mu           sync.Mutex
	now          func() time.Time
	failedLogins map[string][]time.Time
	alertedIPs   map[string]time.Time
	alerts       []SecurityAlert
}

// SecurityAlert is one raised alert
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
}

// Monitor is the process-wide monitor; nil disables tracking
var Monitor *SecurityEventMonitor

// NewSecurityMonitor creates an empty monitor
func NewSecurityMonitor() *SecurityEventMonitor {
	return &SecurityEventMonitor{
		now:          time.Now,
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
	}
}

// InitSecurityMonitor installs the global monitor
func InitSecurityMonitor() {
	Monitor = NewSecurityMonitor()
}

// TrackFailedLogin records a failed attempt and reports whether it raised an alert
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-FailedLoginWindow)
	attempts := m.failedLogins[ip][:0]
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			attempts = append(attempts, t)
		}
	}
	attempts = append(attempts, now)
	m.failedLogins[ip] = attempts

	if len(attempts) < FailedLoginThreshold {
		return false
	}
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < AlertCooldown {
		return false
	}

	m.alertedIPs[ip] = now
	alert := SecurityAlert{Timestamp: now, IP: ip, Reason: "repeated failed logins", Attempts: len(attempts)}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxStoredAlerts {
		m.alerts = m.alerts[:maxStoredAlerts]
	}
	securityAlertsTotal.Inc()
	LogSecurityEvent("LOGIN_ALERT", ip+" failed to log in repeatedly")
	return true
}

// ResetFailedLogins forgets the attempts of ip after a successful login
func (m *SecurityEventMonitor) ResetFailedLogins(ip string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failedLogins, ip)
}

// RecentAlerts returns the raised alerts, newest first
func (m *SecurityEventMonitor) RecentAlerts() []SecurityAlert {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SecurityAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Prune drops attempts outside the window and expired alert cooldowns
func (m *SecurityEventMonitor) Prune() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > FailedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) > AlertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}
