package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	"github.com/allisson/badgereader/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsCredentialService implements CredentialService using gocloud.dev/secrets.
type kmsCredentialService struct{}

// NewCredentialService creates a new credential service.
func NewCredentialService() CredentialService {
	return &kmsCredentialService{}
}

// ResolvePassword returns plain when set. Otherwise it decrypts the base64
// ciphertext with the keeper at keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func (k *kmsCredentialService) ResolvePassword(
	ctx context.Context,
	plain, ciphertext, keyURI string,
) (string, error) {
	if plain != "" || ciphertext == "" {
		return plain, nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, "password ciphertext is not valid base64")
	}

	keeper, err := k.openKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() { _ = keeper.Close() }()

	password, err := keeper.Decrypt(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt password: %w", err)
	}
	return string(password), nil
}

// EncryptPassword encrypts password with the keeper at keyURI.
func (k *kmsCredentialService) EncryptPassword(ctx context.Context, password, keyURI string) (string, error) {
	if password == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "password must not be empty")
	}

	keeper, err := k.openKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() { _ = keeper.Close() }()

	ciphertext, err := keeper.Encrypt(ctx, []byte(password))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (k *kmsCredentialService) openKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	if keyURI == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "KMS key URI must not be empty")
	}
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}
