package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
)

func TestParseRepositoryRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    model.RepositoryRef
		wantErr bool
	}{
		{name: "owner and name", input: "acme/widgets", want: model.RepositoryRef{Owner: "acme", Name: "widgets"}},
		{name: "name contains slash", input: "acme/widgets/extra", want: model.RepositoryRef{Owner: "acme", Name: "widgets/extra"}},
		{name: "missing name", input: "acme/", wantErr: true},
		{name: "missing owner", input: "/widgets", wantErr: true},
		{name: "no separator", input: "acme", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := model.ParseRepositoryRef(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestStateKey(t *testing.T) {
	assert.Equal(t, "acme/widgets/main", model.StateKey("acme", "widgets", "main"))
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "abc123d", model.CommitSnapshot{SHA: "abc123def456"}.ShortSHA())
	assert.Equal(t, "abc", model.CommitSnapshot{SHA: "abc"}.ShortSHA())
	assert.Empty(t, model.CommitSnapshot{}.ShortSHA())
}
