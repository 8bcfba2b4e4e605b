/*
Package crypto1 implements the MIFARE Classic Crypto1 stream cipher, its tag
nonce generator and the three-pass authentication built on top of them.

The package provides:
  - A bit-exact 48-bit LFSR with forward and backward clocking
  - The two-layer nonlinear filter that produces the keystream
  - Byte and word granularity encryption, with and without keystream feedback
  - Key derivation and key reversal between user keys and register contents
  - The 16-bit tag nonce PRNG
  - Reader and tag simulations of the authentication handshake

# Register Layout

The cipher state is a 48-bit integer (State). Bit i of the integer is register
position i; position 0 holds the newest bit shifted in and position 47 the
oldest:

	position:  47 46 45 ... 2 1 0
	           oldest          newest

A forward clock computes the feedback from the pre-shift state, shifts every
bit one position towards 47 (dropping position 47) and writes
feedback XOR input into position 0. Feedback taps are given 1-based from the
newest bit:

	48 43 39 38 36 34 33 31 29 24 23 21 19 13 9 7 6 5

so tap t reads position t-1. A backward clock reads the same taps one position
further (the register has already moved), excluding tap 48, XORs them with
position 0 and shifts everything back towards 0, which reconstructs the
dropped bit exactly.

# Filter Function

Twenty even register positions feed five 4-input functions whose outputs feed
one 5-input function. Each function is a truth table packed into an integer;
the first listed input is the most significant bit of the table index:

	fa = 0x0000_9E98    (4 inputs)
	fb = 0x0000_B48E    (4 inputs)
	fc = 0xEC57_E80A    (5 inputs)

	layer 1:  fa(0,2,4,6) fb(8,10,12,14) fa(16,18,20,22) fa(24,26,28,30) fb(32,34,36,38)
	layer 2:  fc(layer 1, first result most significant)

# Key Layout

A user key is a 48-bit integer. Register position i receives key bit i^7,
which is the same as reversing the bit order inside each of the six key
bytes:

	key   0x123456789ABC
	state 0x482C6A1E593D

KeyReverse undoes the mapping; KeyReverse(KeyDerive(k)) == k for every k.

# Wire Bit Order

Values exchanged with a reader are processed one byte at a time, most
significant byte first, and each byte least significant bit first. Byte and
Word place every output bit in the position of the input bit that produced
it. Reverse8 therefore walks a byte from its most significant bit and
Reverse32 walks bytes from the least significant one, the exact mirror of the
forward order.

Keystream recovered from the wire has to be bit-reversed inside every byte
(BitReverse8, BitReverse32) to put it in generation order, first generated
bit most significant. These orderings are part of the compatibility contract
with existing hardware traces and must not be normalised.

# Nonce PRNG

The tag nonce generator is a 16-bit LFSR (taps 16 14 13 11) running inside a
32-bit window. A seed is byte-swapped into the window with its upper half
zero-filled, so only the low 16 bits of a nonce carry entropy; after 32 clocks
the window depends on nothing else. Successor(nt, 64) is the reader answer
plaintext and Successor(nt, 96) the tag answer plaintext.

# Authentication

	tag    -> reader : nt
	reader -> tag    : {nr} {ar}     ar = suc64(nt)
	tag    -> reader : {at}          at = suc96(nt)

Both sides first feed uid^nt into the cipher. The reader feeds the plaintext
nr while encrypting it; the tag feeds the ciphertext with keystream feedback
enabled, which leaves both registers identical. ar and at are encrypted with
the free-running keystream that follows.

A Session plays the reader role and Tag the card role. Neither is safe for
concurrent use.
*/
package crypto1
