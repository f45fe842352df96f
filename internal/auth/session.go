package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lockpass/internal/api"
)

// Session is the token pair of a logged-in device. The access token is a
// server-signed JWT; its expiry is read from the claims without verifying
// the signature, since the client has no server key and only needs to know
// when to refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	DeviceID     string
}

func (s Session) ExpiresAt() (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, jwt.ErrTokenInvalidClaims
	}
	return exp.Time, nil
}

func (s Session) Expired(now time.Time) bool {
	exp, err := s.ExpiresAt()
	if err != nil {
		return true
	}
	return !now.Before(exp)
}

// DeviceProvider supplies the identity fields sent with every login.
type DeviceProvider interface {
	Device() api.DeviceInfo
}

// StaticDevice is the default provider: a stable generated identifier plus
// fixed descriptors.
type StaticDevice struct {
	ID   string
	Name string
	Type string
}

func NewStaticDevice(name, typ string) StaticDevice {
	return StaticDevice{ID: uuid.NewString(), Name: name, Type: typ}
}

func (d StaticDevice) Device() api.DeviceInfo {
	return api.DeviceInfo{DeviceID: d.ID, DeviceName: d.Name, DeviceType: d.Type}
}

// BiometricGate is the OS sensor collaborator. Prompt blocks until the user
// confirms or the context is done.
type BiometricGate interface {
	Available() bool
	Prompt(ctx context.Context) (bool, error)
}
