// Package totp implements the time-based one-time-password second factor:
// secret generation with a provisioning URI, QR rendering for authenticator
// apps, and windowed code verification.
package totp

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pquerna/otp"
	totplib "github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
)

const (
	// secretSize is the shared-secret entropy in bytes (160 bits).
	secretSize = 20

	// period is the TOTP time step in seconds.
	period = 30

	// skew is the accepted clock drift in time steps on either side.
	skew = 2

	qrSizePx = 256
)

// Setup is the result of generating a new shared secret.
type Setup struct {
	Secret          string
	ProvisioningURI string
}

// GenerateSecret produces a random base32 secret and the otpauth:// URI
// that authenticator apps import.
func GenerateSecret(issuer, account string) (*Setup, error) {
	key, err := totplib.Generate(totplib.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		SecretSize:  secretSize,
	})
	if err != nil {
		return nil, fmt.Errorf("error generating totp secret: %w", err)
	}

	return &Setup{Secret: key.Secret(), ProvisioningURI: key.URL()}, nil
}

// ProvisioningURI rebuilds the otpauth:// URI for an already-stored
// secret, so repeated setup requests return the same scannable code.
func ProvisioningURI(issuer, account, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("period", strconv.Itoa(period))
	v.Set("algorithm", "SHA1")
	v.Set("digits", "6")

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// QRCodeDataURI renders the provisioning URI as a PNG QR code wrapped in a
// data: URI suitable for embedding directly in an <img> tag.
func QRCodeDataURI(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, qrSizePx)
	if err != nil {
		return "", fmt.Errorf("error rendering qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// VerifyCode reports whether the submitted 6-digit code matches the secret
// at the current time, accepting codes from time-step counters within
// ±skew of now. The underlying comparison is fixed-length per candidate.
func VerifyCode(secret, code string) bool {
	return verifyCodeAt(secret, code, time.Now())
}

func verifyCodeAt(secret, code string, t time.Time) bool {
	ok, err := totplib.ValidateCustom(code, secret, t.UTC(), totplib.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
