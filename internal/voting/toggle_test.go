package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		previous int
		dir      Direction
		want     int
	}{
		{"like from nothing", 0, Like, 1},
		{"dislike from nothing", 0, Dislike, -1},
		{"like again cancels", 1, Like, 0},
		{"dislike again cancels", -1, Dislike, 0},
		{"like switches dislike", -1, Like, 1},
		{"dislike switches like", 1, Dislike, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.previous, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	_, err := Resolve(0, Direction(0))
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))

	_, err = Resolve(0, Direction(2))
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))

	_, err = Resolve(5, Like)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))
}

func TestResolveTwiceIsIdentity(t *testing.T) {
	for _, prev := range []int{-1, 0, 1} {
		for _, d := range []Direction{Like, Dislike} {
			once, err := Resolve(prev, d)
			require.NoError(t, err)
			twice, err := Resolve(once, d)
			require.NoError(t, err)

			if prev == int(d) {
				assert.Equal(t, int(d), twice, "prev=%d dir=%s", prev, d)
			} else {
				assert.Equal(t, 0, twice, "prev=%d dir=%s", prev, d)
			}
		}
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("Like")
	require.NoError(t, err)
	assert.Equal(t, Like, d)

	d, err = ParseDirection(" dislike ")
	require.NoError(t, err)
	assert.Equal(t, Dislike, d)

	_, err = ParseDirection("meh")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))
}

func TestValidateValue(t *testing.T) {
	for _, v := range []int{-1, 0, 1} {
		assert.NoError(t, ValidateValue(v))
	}
	for _, v := range []int{-2, 2, 100} {
		assert.Error(t, ValidateValue(v))
	}
}

func TestCountsNet(t *testing.T) {
	assert.Equal(t, -2, Counts{Likes: 1, Dislikes: 3}.Net())
}
