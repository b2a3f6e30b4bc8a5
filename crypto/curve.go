package crypto

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ScalarLength is the byte length of a serialized secp256k1 scalar
const ScalarLength = 32

var (
	ErrInvalidScalar = errors.New("scalar is zero or not within the curve order")
	ErrInvalidPoint  = errors.New("cannot parse the curve point")
)

// ECDHRaw multiplies the public curve point by the private scalar and returns
// the x coordinate of the product in its fixed 32 byte big-endian form. The
// point is accepted in any of the standard serialized formats. Scalar
// material is wiped before returning, on failure paths as well.
func ECDHRaw(pubKey []byte, scalar []byte) ([]byte, error) {
	var s btcec.ModNScalar
	defer s.Zero()

	if len(scalar) != ScalarLength {
		return nil, ErrInvalidScalar
	}

	if overflow := s.SetByteSlice(scalar); overflow || s.IsZero() {
		return nil, ErrInvalidScalar
	}

	pub, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return nil, ErrInvalidPoint
	}

	var point, product btcec.JacobianPoint

	pub.AsJacobian(&point)
	btcec.ScalarMultNonConst(&s, &point, &product)
	product.ToAffine()

	out := make([]byte, ScalarLength)
	product.X.PutBytesUnchecked(out)

	return out, nil
}

// ScalarInverse returns the multiplicative inverse of the scalar modulo the
// curve group order, in its fixed 32 byte big-endian form. Scalar material,
// including the intermediate inverse state, is wiped before returning.
func ScalarInverse(scalar []byte) ([]byte, error) {
	var s btcec.ModNScalar
	defer s.Zero()

	if len(scalar) != ScalarLength {
		return nil, ErrInvalidScalar
	}

	if overflow := s.SetByteSlice(scalar); overflow || s.IsZero() {
		return nil, ErrInvalidScalar
	}

	s.InverseNonConst()

	var out [ScalarLength]byte
	s.PutBytes(&out)

	return out[:], nil
}
