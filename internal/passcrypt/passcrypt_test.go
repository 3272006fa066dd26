package passcrypt

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

const testPassphrase = "aurora-blog-secret-salt"

// OpenSSL で生成した既知ベクトル:
//
//	openssl enc -aes-256-cbc -md md5 -pass pass:aurora-blog-secret-salt -S 0102030405060708 -P
func TestDeriveKeyOpenSSLVector(t *testing.T) {
	salt := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	key, iv := deriveKey([]byte(testPassphrase), salt)

	wantKey := "19063f9f2ba585f52495ebba34f472fdbfc22f9766b54d874283cc55b3d83e6e"
	wantIV := "2649b8174cdc6248c79dfdaad8f22f95"

	if got := hex.EncodeToString(key); got != wantKey {
		t.Fatalf("key = %s, want %s", got, wantKey)
	}
	if got := hex.EncodeToString(iv); got != wantIV {
		t.Fatalf("iv = %s, want %s", got, wantIV)
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	k1, iv1 := deriveKey([]byte(testPassphrase), salt)
	k2, iv2 := deriveKey([]byte(testPassphrase), salt)
	if hex.EncodeToString(k1) != hex.EncodeToString(k2) || hex.EncodeToString(iv1) != hex.EncodeToString(iv2) {
		t.Fatal("deriveKey is not deterministic for the same passphrase and salt")
	}
}

// "Salted__" ヘッダー付きペイロード。暗号文は OpenSSL で生成し、
// JSON の password フィールドが取り出されることを確認する。
func TestDecryptSaltedJSONPayload(t *testing.T) {
	blob := "U2FsdGVkX18BAgMEBQYHCMhRRyd2ajihzq2WUgGOmwbQtm0O1jcIaUrkp0X8O5ns"

	got, err := New(testPassphrase).Decrypt(blob)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if got != "s3cr3t-P@ss" {
		t.Fatalf("Decrypt = %q, want %q", got, "s3cr3t-P@ss")
	}
}

// ヘッダーなしペイロードはゼロソルトで復号される（後方互換パス）。
// 暗号文は openssl enc -S 0000000000000000 で生成。
func TestDecryptLegacyZeroSalt(t *testing.T) {
	blob := "+6i8IItQklG45q1dYdztI7FNp6ioUu91r9TH/HTFiNM="

	got, err := New(testPassphrase).Decrypt(blob)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if got != "plain-text-password" {
		t.Fatalf("Decrypt = %q, want %q", got, "plain-text-password")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	bridge := New(testPassphrase)
	plaintexts := []string{
		"a",
		"simple-password",
		"ありがとう🔐パスワード",
		strings.Repeat("long-block-boundary-", 8),
		`{"password":"nested-value"}`,
	}

	for _, plain := range plaintexts {
		blob, err := bridge.Encrypt(plain)
		if err != nil {
			t.Fatalf("Encrypt(%q) returned error: %v", plain, err)
		}
		got, err := bridge.Decrypt(blob)
		if err != nil {
			t.Fatalf("Decrypt of %q returned error: %v", plain, err)
		}
		want := plain
		if plain == `{"password":"nested-value"}` {
			// JSON オブジェクトの場合は password フィールドが返る
			want = "nested-value"
		}
		if got != want {
			t.Fatalf("round trip = %q, want %q", got, want)
		}
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	salt := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	blob, err := New(testPassphrase).EncryptWithSalt("correct-horse", salt)
	if err != nil {
		t.Fatalf("EncryptWithSalt returned error: %v", err)
	}

	_, err = New("different-passphrase").Decrypt(blob)
	if !errors.Is(err, ErrCryptoFailure) {
		t.Fatalf("expected ErrCryptoFailure, got %v", err)
	}
}

func TestDecryptMalformedInput(t *testing.T) {
	bridge := New(testPassphrase)
	inputs := []string{
		"",
		"not-base64!!",
		"QQ==",                 // 1バイト（ブロック長未満）
		"U2FsdGVkX18=",         // ヘッダーのみ
		"AAAAAAAAAAAAAAAAAAA=", // ブロック長不一致
	}
	for _, in := range inputs {
		if _, err := bridge.Decrypt(in); !errors.Is(err, ErrCryptoFailure) {
			t.Fatalf("Decrypt(%q): expected ErrCryptoFailure, got %v", in, err)
		}
	}
}
