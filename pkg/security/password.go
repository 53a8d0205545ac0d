package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/procurehub/portal/pkg/config"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHash signals a stored hash in neither the Argon2id nor the bcrypt format.
var ErrInvalidHash = errors.New("invalid password hash")

// ArgonParams captures the Argon2id parameters we embed into each hash string.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// Hasher hashes new passwords with Argon2id and verifies both Argon2id and
// bcrypt hashes. bcrypt hashes come from accounts imported from the previous
// portal database.
type Hasher struct {
	params ArgonParams
}

// NewHasher builds a Hasher from the password configuration.
func NewHasher(cfg config.PasswordConfig) *Hasher {
	return &Hasher{params: paramsFromConfig(cfg)}
}

// Hash returns a formatted Argon2id hash for the provided password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	p := h.params
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, ErrInvalidHash
		}
	}

	params, salt, hash, err := decodeArgon(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)
	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

// NeedsRehash reports whether encoded should be replaced by a fresh Argon2id hash.
func (h *Hasher) NeedsRehash(encoded string) bool {
	if isBcrypt(encoded) {
		return true
	}
	params, _, _, err := decodeArgon(encoded)
	if err != nil {
		return true
	}
	p := h.params
	return params.Memory != p.Memory || params.Time != p.Time || params.Parallelism != p.Parallelism
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func paramsFromConfig(cfg config.PasswordConfig) ArgonParams {
	return ArgonParams{
		Memory:      clampUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clampUint32(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(clampInt(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     clampUint32(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clampUint32(cfg.ArgonKeyLen, 16, 64),
	}
}

func decodeArgon(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var params ArgonParams
	for _, token := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		bits := 32
		if key == "p" {
			bits = 8
		}
		v, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		switch key {
		case "m":
			params.Memory = uint32(v)
		case "t":
			params.Time = uint32(v)
		case "p":
			params.Parallelism = uint8(v)
		}
	}
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(hash))
	return params, salt, hash, nil
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampUint32(value, min, max int) uint32 {
	return uint32(clampInt(value, min, max))
}
