package dcgan_go

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// ActivationFunc Just an alias to Gorgonia'a api_gen.go - https://github.com/gorgonia/gorgonia/blob/master/api_gen.go#L1
type ActivationFunc func(a *gorgonia.Node) (*gorgonia.Node, error)

func NoActivation(a *gorgonia.Node) (*gorgonia.Node, error) { return a, nil }
func Abs(a *gorgonia.Node) (*gorgonia.Node, error)          { return gorgonia.Abs(a) }
func Exp(a *gorgonia.Node) (*gorgonia.Node, error)          { return gorgonia.Exp(a) }
func Log(a *gorgonia.Node) (*gorgonia.Node, error)          { return gorgonia.Log(a) }
func Square(a *gorgonia.Node) (*gorgonia.Node, error)       { return gorgonia.Square(a) }
func Sqrt(a *gorgonia.Node) (*gorgonia.Node, error)         { return gorgonia.Sqrt(a) }
func Tanh(a *gorgonia.Node) (*gorgonia.Node, error)         { return gorgonia.Tanh(a) }
func Sigmoid(a *gorgonia.Node) (*gorgonia.Node, error)      { return gorgonia.Sigmoid(a) }
func Log1p(a *gorgonia.Node) (*gorgonia.Node, error)        { return gorgonia.Log1p(a) }
func Softplus(a *gorgonia.Node) (*gorgonia.Node, error)     { return gorgonia.Softplus(a) }
func Rectify(a *gorgonia.Node) (*gorgonia.Node, error)      { return gorgonia.Rectify(a) }

// LeakyRectify Returns leaky rectifier activation with the given negative slope:
// leaky(x) = max(x, 0) - alpha*max(-x, 0)
// Gorgonia v0.9.x does not export a leaky rectifier, so it is composed from plain ones.
func LeakyRectify(alpha float64) ActivationFunc {
	return func(a *gorgonia.Node) (*gorgonia.Node, error) {
		positivePart, err := gorgonia.Rectify(a)
		if err != nil {
			return nil, errors.Wrap(err, "Can't do max(x, 0)")
		}
		neg, err := gorgonia.Neg(a)
		if err != nil {
			return nil, errors.Wrap(err, "Can't do -1*x")
		}
		negativePart, err := gorgonia.Rectify(neg)
		if err != nil {
			return nil, errors.Wrap(err, "Can't do max(-x, 0)")
		}
		alphaScalar := gorgonia.NewScalar(a.Graph(), a.Dtype(), gorgonia.WithValue(alpha))
		scaled, err := gorgonia.Mul(alphaScalar, negativePart)
		if err != nil {
			return nil, errors.Wrap(err, "Can't do (alpha*x)")
		}
		return gorgonia.Sub(positivePart, scaled)
	}
}
