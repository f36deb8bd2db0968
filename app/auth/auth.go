package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Verifier reports whether a username/password pair is accepted.
type Verifier func(username, password string) bool

var ErrInvalidAuthFile = errors.New("invalid auth file format (expected: username:hash)")

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Bounds accepted when reading a stored hash.
const (
	maxArgon2Memory  = 1024 * 1024 // 1 GB
	maxArgon2Time    = 16
	maxArgon2Threads = 64
	minArgon2KeyLen  = 16
	maxArgon2KeyLen  = 64
)

type argon2Hash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// StaticVerifier accepts exactly one username/password pair.
func StaticVerifier(username, password string) Verifier {
	return func(u, p string) bool {
		userMatch := subtle.ConstantTimeCompare([]byte(u), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1
		return userMatch && passMatch
	}
}

// HashVerifier accepts username with a password matching an Argon2id hash.
func HashVerifier(username, hash string) Verifier {
	return func(u, p string) bool {
		if subtle.ConstantTimeCompare([]byte(u), []byte(username)) != 1 {
			return false
		}
		ok, err := VerifyPassword(p, hash)
		if err != nil {
			slog.Error("Error verifying password", "error", err)
			return false
		}
		return ok
	}
}

// FileVerifier reads a username:hash auth file.
func FileVerifier(path string) (Verifier, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read auth file: %w", err)
	}

	username, hash, err := parseAuthLine(string(data))
	if err != nil {
		return nil, "", err
	}

	if _, err := parseHash(hash); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidAuthFile, err)
	}

	return HashVerifier(username, hash), username, nil
}

func parseAuthLine(data string) (string, string, error) {
	line := strings.TrimSpace(data)
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidAuthFile
	}
	return parts[0], parts[1], nil
}

// HashPassword creates an Argon2id hash of the password
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads, b64Salt, b64Hash), nil
}

// VerifyPassword verifies a password against an Argon2id hash
func VerifyPassword(password, hash string) (bool, error) {
	h, err := parseHash(hash)
	if err != nil {
		return false, err
	}

	computedHash := argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, uint32(len(h.key)))

	return subtle.ConstantTimeCompare(h.key, computedHash) == 1, nil
}

// parseHash decodes $argon2id$v=19$m=...,t=...,p=...$salt$key and rejects
// parameters argon2.IDKey would panic on or that would allocate without bound.
func parseHash(hash string) (*argon2Hash, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("not an argon2id hash")
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	switch {
	case threads < 1 || threads > maxArgon2Threads:
		return nil, fmt.Errorf("argon2 parallelism %d out of range 1-%d", threads, maxArgon2Threads)
	case time < 1 || time > maxArgon2Time:
		return nil, fmt.Errorf("argon2 time cost %d out of range 1-%d", time, maxArgon2Time)
	case memory < 8*threads || memory > maxArgon2Memory:
		return nil, fmt.Errorf("argon2 memory %d KiB out of range %d-%d", memory, 8*threads, maxArgon2Memory)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("failed to decode hash: %w", err)
	}
	if len(key) < minArgon2KeyLen || len(key) > maxArgon2KeyLen {
		return nil, fmt.Errorf("argon2 key length %d out of range %d-%d", len(key), minArgon2KeyLen, maxArgon2KeyLen)
	}

	return &argon2Hash{
		memory:  memory,
		time:    time,
		threads: uint8(threads),
		salt:    salt,
		key:     key,
	}, nil
}

// WriteAuthFile stores username and the hashed password at path (mode 0400).
// An existing file is replaced only when overwrite is set.
func WriteAuthFile(path, username, password string, overwrite bool) error {
	if strings.Contains(username, ":") {
		return fmt.Errorf("username must not contain ':'")
	}

	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return fmt.Errorf("auth file already exists: %s", path)
		}
		// 0400 files cannot be truncated in place
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing auth file: %w", err)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	content := fmt.Sprintf("%s:%s\n", username, hash)
	if err := os.WriteFile(path, []byte(content), 0400); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}

	return nil
}
