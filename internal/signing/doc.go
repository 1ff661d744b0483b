// Package signing produces and checks release signatures.
//
// Signing imports an armored private key (delivered through the CI
// environment with literal escape sequences) into an ephemeral GnuPG home
// and produces one detached ASCII-armored signature per artifact via the
// external gpg binary. Verification is native, using ProtonMail's openpgp
// fork against a public keyring. A SHA-256 checksum manifest covers all
// artifacts and is itself signed.
package signing
