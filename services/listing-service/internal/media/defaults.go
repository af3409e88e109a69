package media

import "math/rand/v2"

const unsplashBase = "https://images.unsplash.com/"

// DefaultImageURLs is the fixed set of stock photos served for listings without images.
var DefaultImageURLs = []string{
	unsplashBase + "photo-1568605114967-8130f3a36994",
	unsplashBase + "photo-1570129477492-45c003edd2be",
	unsplashBase + "photo-1583608205776-bfd35f0d9f83",
	unsplashBase + "photo-1576941089067-2de3c901e126",
	unsplashBase + "photo-1598228723793-52759bba239c",
}

// DefaultImages supplies a placeholder image URL.
type DefaultImages interface {
	Pick() string
}

// RandomDefaults picks uniformly from DefaultImageURLs.
type RandomDefaults struct {
	intN func(n int) int
}

func NewRandomDefaults() *RandomDefaults {
	return &RandomDefaults{intN: rand.IntN}
}

func (d *RandomDefaults) Pick() string {
	return DefaultImageURLs[d.intN(len(DefaultImageURLs))]
}

// FixedDefault always returns the same URL.
type FixedDefault string

func (d FixedDefault) Pick() string {
	return string(d)
}

// IsDefaultImage reports whether url is one of the stock placeholder images.
func IsDefaultImage(url string) bool {
	for _, u := range DefaultImageURLs {
		if u == url {
			return true
		}
	}
	return false
}
