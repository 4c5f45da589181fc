// Package toyrsa is a textbook RSA toolkit for study and demonstration.
//
// It generates small RSA key pairs with a Miller-Rabin prime search, encrypts
// and verifies with the public exponent, and decrypts and signs with the
// private exponent using Chinese Remainder Theorem recombination.
//
// The arithmetic is unpadded and variable-time, and the default prime range
// is tiny. Do not use it to protect anything.
//
// Basic usage:
//
//	kp, err := toyrsa.GenerateKey(ctx,
//	    toyrsa.WithMinPrime(big.NewInt(100)),
//	    toyrsa.WithMaxPrime(big.NewInt(1000)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c, err := kp.Public().Encrypt(big.NewInt(23))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := kp.Decrypt(c)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Decrypted:", m)
package toyrsa
