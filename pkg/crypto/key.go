package crypto

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip39"
	ed "golang.org/x/crypto/ed25519"

	"github.com/tanglekit/blockcodec/pkg/block"
)

const (
	hardendOffset  = 0x80000000
	mnemonicBits   = 256
	ed25519SeedKey = "ed25519 seed"
)

var (
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	ErrNonHardened     = errors.New("ed25519 derivation supports only hardened segments")
)

var keyPathRegex = regexp.MustCompile("^[0-9]+'?$")

func parseDerivationPath(path string) ([]uint32, error) {
	if path == "" || path[0] != 'm' {
		return nil, errors.New("derivation path must start from `m`")
	}
	segments := strings.Split(path, "/")
	result := make([]uint32, len(segments)-1)
	for i, segment := range segments[1:] {
		if segment == "" {
			return nil, errors.New("each segment cannot be empty")
		}
		if !keyPathRegex.MatchString(segment) {
			return nil, fmt.Errorf("invalid segment format for %s", segment)
		}
		hardened := strings.HasSuffix(segment, "'")
		val, err := strconv.ParseUint(strings.TrimSuffix(segment, "'"), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("segment %s exceeds max uint32: %w", segment, err)
		}
		if !hardened {
			result[i] = uint32(val)
			continue
		}
		if val > math.MaxUint32/2 {
			return nil, fmt.Errorf("segment %s exceeds max uint32 / 2", segment)
		}
		result[i] = uint32(val) + hardendOffset
	}
	return result, nil
}

// NewMnemonic returns a fresh 24 word recovery phrase.
func NewMnemonic() (string, error) {
	return bip39.NewMnemonic(RandomBytes(mnemonicBits / 8))
}

// ValidateMnemonic checks the words and checksum of a recovery phrase.
func ValidateMnemonic(recoveryPhrase string) error {
	if !bip39.IsMnemonicValid(recoveryPhrase) {
		return ErrInvalidMnemonic
	}
	return nil
}

// DeriveEd25519Key returns the 64 byte ed25519 private key at path.
func DeriveEd25519Key(recoveryPhrase, path string) ([]byte, error) {
	derivationPath, err := parseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	seed := bip39.NewSeed(recoveryPhrase, "")
	key, chainCode := ed25519MasterKey(seed)
	for _, segment := range derivationPath {
		if segment < hardendOffset {
			return nil, ErrNonHardened
		}
		key, chainCode = ed25519ChildKey(key, chainCode, segment)
	}
	_, sk, err := ed.GenerateKey(bytes.NewReader(key))
	if err != nil {
		return nil, err
	}
	return sk, nil
}

// DerivePublicKey returns the ed25519 public key controlling chain.
func DerivePublicKey(recoveryPhrase string, chain block.Bip44) (*block.Ed25519PublicKey, error) {
	if err := ValidateMnemonic(recoveryPhrase); err != nil {
		return nil, err
	}
	sk, err := DeriveEd25519Key(recoveryPhrase, chain.String())
	if err != nil {
		return nil, err
	}
	return block.NewEd25519PublicKey(ed.PrivateKey(sk).Public().(ed.PublicKey))
}

// DeriveAddress returns the ed25519 address controlled by chain.
func DeriveAddress(recoveryPhrase string, chain block.Bip44) (*block.Ed25519Address, error) {
	pk, err := DerivePublicKey(recoveryPhrase, chain)
	if err != nil {
		return nil, err
	}
	return pk.Address(), nil
}

func ed25519MasterKey(seed []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, []byte(ed25519SeedKey))
	mac.Write(seed)
	result := mac.Sum(nil)
	return result[:32], result[32:]
}

func ed25519ChildKey(key, chainCode []byte, index uint32) ([]byte, []byte) {
	data := make([]byte, 0, 1+len(key)+4)
	data = append(data, 0)
	data = append(data, key...)
	data = binary.BigEndian.AppendUint32(data, index)
	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	result := mac.Sum(nil)
	return result[:32], result[32:]
}
