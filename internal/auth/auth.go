// Package auth implements the two-stage authentication flow: platform
// credentials first, then broker credentials gated by an SMS OTP challenge.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bist-cli/internal/api"
	"bist-cli/internal/logger"
	"bist-cli/internal/trace"
)

// Platform login failures mapped from HTTP status.
var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrAccountLocked  = errors.New("account locked")
)

// Broker flow failures.
var (
	ErrNotLoggedIn          = errors.New("platform login required")
	ErrOTPTooShort          = errors.New("OTP code must be at least 4 characters")
	ErrNoPendingOTP         = errors.New("no OTP challenge pending")
	ErrPlatformSessionStale = errors.New("platform session expired or required")
	ErrBadBrokerCredentials = errors.New("bad broker credentials or invalid OTP")
	ErrOTPNotRequested      = errors.New("must request OTP first")
	ErrBrokerUnavailable    = errors.New("broker service unavailable")
)

// BrokerState tracks the broker-side authentication flow.
type BrokerState int

const (
	BrokerUnauthenticated BrokerState = iota
	BrokerOtpPending
	BrokerAuthenticated
)

func (s BrokerState) String() string {
	switch s {
	case BrokerOtpPending:
		return "otp_pending"
	case BrokerAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// UserProfile carries the platform user fields the client displays.
type UserProfile struct {
	Username      string `json:"username"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	Role          string `json:"role"`
	AccountStatus string `json:"accountStatus"`
	CreatedAt     string `json:"createdAt"`
	EmailVerified bool   `json:"emailVerified"`
	PhoneVerified bool   `json:"phoneVerified"`
	KYCVerified   bool   `json:"kycVerified"`
}

// Manager drives both authentication flows. The broker state is transient
// and never persisted; the user profile is cached to the session file.
type Manager struct {
	client  *api.Client
	session *SessionCache
	log     *logger.Logger

	currentUser *UserProfile
	brokerState BrokerState
}

// NewManager wires the auth flow to a session client.
func NewManager(client *api.Client, session *SessionCache, log *logger.Logger) *Manager {
	return &Manager{client: client, session: session, log: log}
}

// Login authenticates against the platform. Status 401 maps to
// ErrBadCredentials and 403 to ErrAccountLocked; any other failure carries
// the server's message.
func (m *Manager) Login(ctx context.Context, username, password string) (*UserProfile, error) {
	ctx, span := trace.StartSpan(ctx, "auth.Login")
	defer span.End()

	result, err := m.client.Login(ctx, username, password)
	if err != nil {
		switch api.StatusOf(err) {
		case 401:
			return nil, fmt.Errorf("%w: %v", ErrBadCredentials, err)
		case 403:
			return nil, fmt.Errorf("%w: %v", ErrAccountLocked, err)
		default:
			return nil, err
		}
	}

	if len(result.User) > 0 {
		var profile UserProfile
		if err := json.Unmarshal(result.User, &profile); err == nil {
			m.currentUser = &profile
			m.session.Save(&profile)
		}
	}

	return m.currentUser, nil
}

// brokerLoginResponse covers both flag spellings the backend uses to signal
// an issued OTP challenge.
type brokerLoginResponse struct {
	SmsSent bool   `json:"smsSent"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BrokerLoginResult reports whether an OTP challenge was issued.
type BrokerLoginResult struct {
	OTPRequired bool
	Message     string
}

// BrokerLogin starts the broker authentication. When the backend issues an
// OTP challenge the flow moves to BrokerOtpPending and VerifyOTP must
// follow; in the unusual no-OTP case it authenticates directly.
func (m *Manager) BrokerLogin(ctx context.Context, username, password string) (*BrokerLoginResult, error) {
	ctx, span := trace.StartSpan(ctx, "auth.BrokerLogin")
	defer span.End()

	if !m.client.IsAuthenticated() {
		return nil, ErrNotLoggedIn
	}

	body := map[string]string{"username": username, "password": password}
	raw, err := m.client.Request(ctx, "POST", "/api/v1/broker/auth/login", body, true)
	if err != nil {
		m.brokerState = BrokerUnauthenticated
		return nil, m.translateBrokerErr(err)
	}

	var resp brokerLoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		m.brokerState = BrokerUnauthenticated
		return nil, &api.Error{Message: "invalid response body"}
	}

	if resp.SmsSent || resp.Success {
		m.brokerState = BrokerOtpPending
		m.log.Info(ctx, "broker OTP challenge issued")
		return &BrokerLoginResult{OTPRequired: true, Message: resp.Message}, nil
	}

	// No challenge issued: the backend accepted the credentials outright.
	m.brokerState = BrokerAuthenticated
	m.log.Info(ctx, "broker authenticated without OTP")
	return &BrokerLoginResult{OTPRequired: false, Message: resp.Message}, nil
}

type verifyOTPResponse struct {
	Authenticated    bool   `json:"authenticated"`
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	SessionExpiresAt string `json:"sessionExpiresAt"`
}

// VerifyOTPResult is returned on successful verification.
type VerifyOTPResult struct {
	Message          string
	SessionExpiresAt string
}

// VerifyOTP submits the SMS code. Codes shorter than 4 characters are
// rejected before any network call. Success requires BOTH the
// authenticated and success flags; on failure the flow stays OtpPending so
// the caller may retry.
func (m *Manager) VerifyOTP(ctx context.Context, code string) (*VerifyOTPResult, error) {
	ctx, span := trace.StartSpan(ctx, "auth.VerifyOTP")
	defer span.End()

	if m.brokerState != BrokerOtpPending {
		return nil, ErrNoPendingOTP
	}
	if len(code) < 4 {
		return nil, ErrOTPTooShort
	}

	raw, err := m.client.Request(ctx, "POST", "/api/v1/broker/auth/verify-otp", map[string]string{"otpCode": code}, true)
	if err != nil {
		return nil, m.translateBrokerErr(err)
	}

	var resp verifyOTPResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &api.Error{Message: "invalid response body"}
	}

	if !resp.Authenticated || !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "OTP verification failed"
		}
		return nil, errors.New(msg)
	}

	m.brokerState = BrokerAuthenticated
	m.log.Info(ctx, "broker authenticated")
	return &VerifyOTPResult{Message: resp.Message, SessionExpiresAt: resp.SessionExpiresAt}, nil
}

// translateBrokerErr maps broker auth HTTP statuses to flow errors.
func (m *Manager) translateBrokerErr(err error) error {
	switch api.StatusOf(err) {
	case 401:
		return fmt.Errorf("%w: %v", ErrPlatformSessionStale, err)
	case 400:
		return fmt.Errorf("%w: %v", ErrBadBrokerCredentials, err)
	case 428:
		return fmt.Errorf("%w: %v", ErrOTPNotRequested, err)
	case 503:
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	default:
		return err
	}
}

// BrokerStatus is the read-only broker authentication probe result.
type BrokerStatus struct {
	Authenticated      bool   `json:"authenticated"`
	Username           string `json:"username"`
	SessionID          string `json:"sessionId"`
	ExpiresAt          string `json:"expiresAt"`
	WebsocketConnected bool   `json:"websocketConnected"`
}

// CheckStatus probes the broker auth status. It is fail-closed: any error
// resolves to not authenticated and is never surfaced.
func (m *Manager) CheckStatus(ctx context.Context) BrokerStatus {
	raw, err := m.client.Get(ctx, "/api/v1/broker/auth/status")
	if err != nil {
		m.brokerState = BrokerUnauthenticated
		return BrokerStatus{}
	}

	var status BrokerStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		m.brokerState = BrokerUnauthenticated
		return BrokerStatus{}
	}

	if status.Authenticated {
		m.brokerState = BrokerAuthenticated
	} else {
		m.brokerState = BrokerUnauthenticated
	}
	return status
}

// Profile fetches the current user profile and refreshes the session cache.
func (m *Manager) Profile(ctx context.Context) (*UserProfile, error) {
	raw, err := m.client.Get(ctx, "/api/v1/users/profile")
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, &api.Error{Message: "invalid response body"}
	}

	m.currentUser = &profile
	m.session.Save(&profile)
	return &profile, nil
}

// Logout resets both flows locally no matter what the remote call does.
func (m *Manager) Logout(ctx context.Context) {
	m.client.Logout(ctx)
	m.currentUser = nil
	m.brokerState = BrokerUnauthenticated
	m.session.Clear()
}

// IsLoggedIn reports the platform login state.
func (m *Manager) IsLoggedIn() bool {
	return m.client.IsAuthenticated()
}

// IsBrokerAuthenticated reports the broker flow state.
func (m *Manager) IsBrokerAuthenticated() bool {
	return m.brokerState == BrokerAuthenticated
}

// State returns the broker flow state.
func (m *Manager) State() BrokerState {
	return m.brokerState
}

// CurrentUser returns the cached profile, possibly nil.
func (m *Manager) CurrentUser() *UserProfile {
	return m.currentUser
}
