package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	internal_errors "github.com/readproof-dev/readproof/internal/errors"
)

// personal_sign output: 65 bytes, 0x-prefixed
var signaturePattern = regexp.MustCompile(`^0x[0-9a-fA-F]{130}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// validator ships eth_addr; the signature shape is ours
	if err := v.RegisterValidation("eth_sig", func(fl validator.FieldLevel) bool {
		return signaturePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register eth_sig validation: %s", err))
	}
	return v
}

// WriteErrorAndStatusCode serializes an error as {"error": ..., "kind": ...}
// with the status the error carries, 500 for anything unclassified.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status := internal_errors.StatusOf(err)
	kind := internal_errors.KindOf(err)
	message := err.Error()
	if kind == internal_errors.KindInternal {
		// internal details stay in the logs
		slog.Error("request failed", "error", err)
		message = "Internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(map[string]any{"error": message, "kind": kind}); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return internal_errors.Validation("Body is invalid json")
	}
	if err := validate.Struct(body); err != nil {
		return internal_errors.Validation("Required fields missing or malformed")
	}
	return nil
}

func GetIP(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP := net.ParseIP(strings.TrimSpace(ip))
		if netIP != nil {
			return strings.TrimSpace(ip), nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}
