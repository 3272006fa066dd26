// Package passcrypt はフロントエンドの対称暗号ライブラリで暗号化された
// パスワードペイロードを復号します。OpenSSL の EVP_BytesToKey 互換の
// 鍵導出（MD5）と AES-256-CBC を使用し、バイト単位で相互運用します。
package passcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"unicode/utf8"
)

// ErrCryptoFailure は復号に失敗したことを示します。
// 原因の内訳（不正な入力・パスフレーズ不一致・破損）は呼び出し側に漏らしません。
var ErrCryptoFailure = errors.New("passcrypt: decrypt failed")

const (
	saltHeader = "Salted__"
	saltLen    = 8
	keyLen     = 32
	ivLen      = 16
)

// Bridge は共有パスフレーズを保持する復号器です。
type Bridge struct {
	passphrase []byte
}

// New は指定されたパスフレーズで Bridge を作成します。
// パスフレーズはフロントエンドの暗号化実装と一致している必要があります。
func New(passphrase string) *Bridge {
	return &Bridge{passphrase: []byte(passphrase)}
}

// Decrypt は base64 エンコードされた暗号化ペイロードを復号し、
// 平文パスワードを返します。ペイロードが JSON オブジェクトで
// password フィールドを持つ場合はその値を、それ以外は平文全体を返します。
func (b *Bridge) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrCryptoFailure
	}

	// "Salted__" ヘッダーがある場合は直後の8バイトがソルト。
	// ない場合は旧形式としてゼロソルトで全体を暗号文とみなす。
	salt := make([]byte, saltLen)
	ciphertext := raw
	if len(raw) > saltLen+saltLen && bytes.Equal(raw[:saltLen], []byte(saltHeader)) {
		copy(salt, raw[saltLen:saltLen+saltLen])
		ciphertext = raw[saltLen+saltLen:]
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrCryptoFailure
	}

	key, iv := deriveKey(b.passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", ErrCryptoFailure
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return "", ErrCryptoFailure
	}
	if !utf8.Valid(plain) {
		return "", ErrCryptoFailure
	}

	return extractPassword(plain), nil
}

// Encrypt は平文をフロントエンドと同一の形式で暗号化します。
// ランダムな8バイトソルトと "Salted__" ヘッダーを付与します。
func (b *Bridge) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return b.EncryptWithSalt(plaintext, salt)
}

// EncryptWithSalt は指定ソルトで暗号化します。ソルトは8バイト必須です。
func (b *Bridge) EncryptWithSalt(plaintext string, salt []byte) (string, error) {
	if len(salt) != saltLen {
		return "", errors.New("passcrypt: salt must be 8 bytes")
	}

	key, iv := deriveKey(b.passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, 0, saltLen*2+len(padded))
	out = append(out, saltHeader...)
	out = append(out, salt...)

	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, padded)
	out = append(out, encrypted...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// deriveKey は EVP_BytesToKey (MD5, 1イテレーション) 互換の鍵導出です。
// hash = MD5(prev ++ passphrase ++ salt) を連結し、鍵32バイト → IV16バイトの
// 順に埋めます。同じ (passphrase, salt) は常に同じ (key, iv) を返します。
func deriveKey(passphrase, salt []byte) (key, iv []byte) {
	var material []byte
	var prev []byte
	for len(material) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		material = append(material, prev...)
	}
	return material[:keyLen], material[keyLen : keyLen+ivLen]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, p := range data[len(data)-padding:] {
		if int(p) != padding {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}

// extractPassword は復号結果が JSON オブジェクトで password フィールドを
// 持つ場合にその値を取り出します。それ以外は復号結果をそのまま返します。
func extractPassword(plain []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(plain, &payload); err == nil {
		if v, ok := payload["password"].(string); ok {
			return v
		}
	}
	return string(plain)
}
