package schoof

import "math/big"

// nextPrime returns the smallest prime strictly greater than n, skipping the
// field characteristic (the trace relation degenerates at l = p).
func nextPrime(n, skip *big.Int) *big.Int {
	one := big.NewInt(1)
	l := new(big.Int).Set(n)
	for {
		l.Add(l, one)
		if l.Cmp(skip) == 0 {
			continue
		}
		if l.ProbablyPrime(32) {
			return new(big.Int).Set(l)
		}
	}
}

// tracePrimes returns the ascending primes l1, l2, ... (never the
// characteristic itself) whose product is the first to satisfy M^2 > 16p,
// i.e. M > 4*sqrt(p), the modulus that pins a unique trace inside the
// Hasse interval.
func tracePrimes(p *big.Int) []*big.Int {
	bound := new(big.Int).Lsh(p, 4)
	m := big.NewInt(1)
	l := big.NewInt(1)
	var primes []*big.Int
	for new(big.Int).Mul(m, m).Cmp(bound) <= 0 {
		l = nextPrime(l, p)
		primes = append(primes, l)
		m.Mul(m, l)
	}
	return primes
}