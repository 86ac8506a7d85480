// Package encryption encrypts and decrypts data with the shared encryption
// key a namespace publishes as common:usesSharedEncryptionKey.
//
// Encryption uses age. A key of the form AGE-SECRET-KEY-1... is an X25519
// identity; any other key string is used as an scrypt passphrase.
// Ciphertext is standard base64.
package encryption
