package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// credentialsFromEnv prefers inline JSON over a key file path.
func credentialsFromEnv() string {
	if raw := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")); raw != "" {
		return raw
	}
	return strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
}

// credentialOptions turns ObjectStorageConfig.Credentials into client options. An
// empty value leaves the client on application default credentials.
func credentialOptions(raw string) []option.ClientOption {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return nil
	case strings.HasPrefix(raw, "{"):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(raw))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(raw)}
	}
}
