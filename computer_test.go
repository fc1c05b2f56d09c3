package fibonacci

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstTerms = []uint64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55}

func TestComputeFirstTerms(t *testing.T) {
	for _, strategy := range Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			c := NewComputer(strategy)
			for n, want := range firstTerms {
				got, err := c.Compute(n)
				require.NoError(t, err)
				assert.Equal(t, want, got, "F(%d)", n)
			}
		})
	}
}

func TestComputeKnownValues(t *testing.T) {
	tests := []struct {
		n    int
		want uint64
	}{
		{0, 0},
		{1, 1},
		{10, 55},
		{30, 832040},
	}

	for _, strategy := range Strategies() {
		c := NewComputer(strategy)
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%d", strategy, tt.n), func(t *testing.T) {
				got, err := c.Compute(tt.n)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestComputeRecurrence(t *testing.T) {
	for _, strategy := range Strategies() {
		c := NewComputer(strategy)
		for n := 2; n <= 20; n++ {
			fn, err := c.Compute(n)
			require.NoError(t, err)
			f1, err := c.Compute(n - 1)
			require.NoError(t, err)
			f2, err := c.Compute(n - 2)
			require.NoError(t, err)
			assert.Equal(t, f1+f2, fn, "%s: F(%d)", strategy, n)
		}
	}
}

func TestComputeNegativeIndex(t *testing.T) {
	for _, strategy := range Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			_, err := NewComputer(strategy).Compute(-1)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err := Compute(-5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestComputeOverflowBoundary(t *testing.T) {
	term, err := Compute(MaxIndex)
	require.NoError(t, err)
	assert.Equal(t, uint64(12200160415121876738), term)

	_, err = Compute(MaxIndex + 1)
	assert.ErrorIs(t, err, ErrOverflow)

	memo := NewComputer(StrategyMemoized)
	term, err = memo.Compute(MaxIndex)
	require.NoError(t, err)
	assert.Equal(t, uint64(12200160415121876738), term)

	_, err = memo.Compute(MaxIndex + 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = NewComputer(StrategyRecursive).Compute(MaxIndex + 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAddDetectsCarry(t *testing.T) {
	_, err := add(94, 7540113804746346429, 12200160415121876738)
	assert.ErrorIs(t, err, ErrOverflow)

	sum, err := add(3, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), sum)
}

func TestComputeIdempotent(t *testing.T) {
	for _, strategy := range Strategies() {
		c := NewComputer(strategy)
		first, err := c.Compute(25)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := c.Compute(25)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestComputeMonotonic(t *testing.T) {
	c := NewComputer(StrategyIterative)
	prev, err := c.Compute(0)
	require.NoError(t, err)
	for n := 1; n <= MaxIndex; n++ {
		term, err := c.Compute(n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, term, prev, "F(%d) < F(%d)", n, n-1)
		prev = term
	}
}

func TestStrategiesAgree(t *testing.T) {
	iter := NewComputer(StrategyIterative)
	memo := NewComputer(StrategyMemoized)
	for n := 0; n <= MaxIndex; n++ {
		a, err := iter.Compute(n)
		require.NoError(t, err)
		b, err := memo.Compute(n)
		require.NoError(t, err)
		assert.Equal(t, a, b, "F(%d)", n)
	}
}

func TestRecursiveHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewComputer(StrategyRecursive).ComputeContext(ctx, 80)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestComputeContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, strategy := range Strategies() {
		_, err := NewComputer(strategy).ComputeContext(ctx, 40)
		assert.ErrorIs(t, err, context.Canceled, strategy.String())
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name    string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyIterative, false},
		{"iterative", StrategyIterative, false},
		{"Recursive", StrategyRecursive, false},
		{" memoized ", StrategyMemoized, false},
		{"matrix", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStrategy(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewComputerUnknownStrategyFallsBack(t *testing.T) {
	c := NewComputer(Strategy("bogus"))
	assert.Equal(t, StrategyIterative, c.Strategy())
}

func TestComputeBig(t *testing.T) {
	for n, want := range firstTerms {
		got, err := ComputeBig(n)
		require.NoError(t, err)
		assert.Equal(t, new(big.Int).SetUint64(want).String(), got.String())
	}

	got, err := ComputeBig(MaxIndex)
	require.NoError(t, err)
	assert.Equal(t, "12200160415121876738", got.String())

	got, err = ComputeBig(100)
	require.NoError(t, err)
	assert.Equal(t, "354224848179261915075", got.String())

	_, err = ComputeBig(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestComputeBigContextCancellation(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ComputeBigContext(cancelled, 10)
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	start := time.Now()
	_, err = ComputeBigContext(ctx, 10_000_000)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSequence(t *testing.T) {
	ctx := context.Background()
	c := NewComputer(StrategyIterative)

	terms, err := Sequence(ctx, c, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, firstTerms, terms)

	terms, err = Sequence(ctx, c, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, terms)

	_, err = Sequence(ctx, c, 10, 5)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Sequence(ctx, c, -1, 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Sequence(ctx, c, 90, 100)
	assert.ErrorIs(t, err, ErrOverflow)
}

type failingStore struct {
	loads, stores int
}

func (s *failingStore) Load(context.Context, int) (uint64, bool, error) {
	s.loads++
	return 0, false, errors.New("store down")
}

func (s *failingStore) Store(context.Context, int, uint64) error {
	s.stores++
	return errors.New("store down")
}

func TestMemoizedToleratesStoreFailures(t *testing.T) {
	store := &failingStore{}
	c := NewComputer(StrategyMemoized, WithMemoStore(store))

	term, err := c.Compute(20)
	require.NoError(t, err)
	assert.Equal(t, uint64(6765), term)
	assert.Positive(t, store.loads)
	assert.Positive(t, store.stores)
}

type countingLogger struct {
	NopLogger
	warns int
}

func (l *countingLogger) Warn(string, ...any) { l.warns++ }

func TestMemoizedStoreFailuresStayLinear(t *testing.T) {
	store := &failingStore{}
	logger := &countingLogger{}
	c := NewComputer(StrategyMemoized, WithMemoStore(store), WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	term, err := c.ComputeContext(ctx, MaxIndex)
	require.NoError(t, err)
	assert.Equal(t, uint64(12200160415121876738), term)
	assert.LessOrEqual(t, store.loads, MaxIndex)
	assert.LessOrEqual(t, store.stores, MaxIndex)
	assert.Equal(t, 1, logger.warns)
}

func TestMemoizedPopulatesStore(t *testing.T) {
	store := NewMapStore()
	c := NewComputer(StrategyMemoized, WithMemoStore(store))

	_, err := c.Compute(30)
	require.NoError(t, err)
	// Indices 2..30 are cached; 0 and 1 are base cases.
	assert.Equal(t, 29, store.Len())

	term, ok, err := store.Load(context.Background(), 30)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(832040), term)
}

func BenchmarkCompute(b *testing.B) {
	for _, strategy := range Strategies() {
		c := NewComputer(strategy)
		b.Run(strategy.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = c.Compute(25)
			}
		})
	}
}
