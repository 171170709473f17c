package vault

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSlot map[string]string

func (m mapSlot) GetString(key string) string { return m[key] }
func (m mapSlot) Put(key, value string)       { m[key] = value }
func (m mapSlot) Remove(key string)           { delete(m, key) }

func TestObfuscate_RoundTrip(t *testing.T) {
	inputs := []string{
		"AIzaSyD-example-key_0123456789",
		"a",
		"with spaces and symbols !@#$%^&*()",
		"日本語のキー",
	}

	for _, in := range inputs {
		out := Obfuscate(in)
		assert.NotEqual(t, in, out)

		back, err := Reveal(out)
		require.NoError(t, err)
		assert.Equal(t, in, back)
	}
}

func TestReveal_Malformed(t *testing.T) {
	_, err := Reveal("%%%not base64%%%")
	assert.ErrorIs(t, err, ErrMalformedValue)

	// valid outer base64 whose XOR-ed payload is not base64
	_, err = Reveal("AAAA")
	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestVault_SaveGetClear(t *testing.T) {
	slot := mapSlot{}
	v := New(slot)

	_, ok := v.Get()
	assert.False(t, ok)
	assert.False(t, v.Has())

	v.Save("AIzaSecret")
	assert.NotEqual(t, "AIzaSecret", slot[StorageKey])

	got, ok := v.Get()
	require.True(t, ok)
	assert.Equal(t, "AIzaSecret", got)

	v.Clear()
	_, ok = v.Get()
	assert.False(t, ok)
	assert.NotContains(t, slot, StorageKey)
}

func TestVault_MalformedStoredValueIsAbsent(t *testing.T) {
	slot := mapSlot{StorageKey: "!!garbage!!"}
	v := New(slot)

	got, ok := v.Get()
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestValidateCredential(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"valid", "AIzaSyABC", "AIzaSyABC", nil},
		{"trimmed", "  AIzaSyABC \n", "AIzaSyABC", nil},
		{"empty", "", "", ErrEmptyCredential},
		{"whitespace", "   ", "", ErrEmptyCredential},
		{"wrong prefix", "sk-12345", "", ErrMalformedCredential},
		{"lowercase prefix", "aizaSyABC", "", ErrMalformedCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateCredential(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionSlot(t *testing.T) {
	sm := scs.New()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := New(NewSessionSlot(sm, r.Context()))
		v.Save("AIzaFromSession")

		got, ok := v.Get()
		assert.True(t, ok)
		assert.Equal(t, "AIzaFromSession", got)
		assert.NotEqual(t, "AIzaFromSession", sm.GetString(r.Context(), StorageKey))

		v.Clear()
		assert.False(t, v.Has())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
