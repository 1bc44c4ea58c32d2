package semaphore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raywall/semaphore-tagger/pkg/auth"
	"github.com/raywall/semaphore-tagger/pkg/config"
	"github.com/raywall/semaphore-tagger/pkg/outbound"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parentFixture = `<?xml version="1.0" encoding="UTF-8"?>
<SEMAPHORE>
  <TERM NAME="Elections" ID="medtop:20000763">
    <PATH TYPE="Broader Term">
      <FIELD NAME="Ignorado" ID="x"><CLASS NAME="Topic"/></FIELD>
    </PATH>
    <PATH TYPE="Narrower Term">
      <FIELD NAME="Political process" ID="medtop:20000621"><CLASS NAME="Topic"/></FIELD>
      <FIELD NAME="Outra classe" ID="y"><CLASS NAME="Concept"/></FIELD>
      <FIELD NAME="Sem classe" ID="z"/>
      <FIELD NAME="Politics" ID="medtop:11000000"><CLASS NAME="Topic"/></FIELD>
    </PATH>
  </TERM>
</SEMAPHORE>`

func staticTokens(token string) auth.TokenSource {
	return auth.NewDirect(func(ctx context.Context) (string, time.Duration, error) {
		return token, 0, nil
	})
}

func testClient() *outbound.Client {
	return outbound.New(config.HTTPConf{ConnectTimeout: time.Second, ReadTimeout: time.Second}, nil, zerolog.Nop())
}

func TestParseParentPath(t *testing.T) {
	chain, err := parseParentPath([]byte(parentFixture))
	require.NoError(t, err)

	assert.Equal(t, []Term{
		{Name: "Political process", QCode: "medtop:20000621"},
		{Name: "Politics", QCode: "medtop:11000000"},
	}, chain)

	t.Run("Deve devolver cadeia vazia sem PATH Narrower Term", func(t *testing.T) {
		chain, err := parseParentPath([]byte(`<SEMAPHORE><TERM/></SEMAPHORE>`))
		require.NoError(t, err)
		assert.Empty(t, chain)
	})
}

func TestParentResolver_Resolve(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(parentFixture))
	}))
	defer server.Close()

	r := NewParentResolver(testClient(), server.URL+"/parent/", staticTokens("tkn"), nil, zerolog.Nop())

	leafFirst, rootFirst := r.Resolve(context.Background(), "medtop:20000763")

	require.Len(t, leafFirst, 2)
	assert.Equal(t, "medtop:20000621", leafFirst[0].QCode)
	assert.Equal(t, "medtop:11000000", rootFirst[0].QCode)
	assert.Equal(t, "medtop:20000621", rootFirst[1].QCode)

	assert.Equal(t, "/parent/medtop:20000763", gotPath)
	assert.Equal(t, "relationshipType=has%20broader", gotQuery)
	assert.Equal(t, "Bearer tkn", gotAuth)
}

func TestParentResolver_FailSoft(t *testing.T) {
	t.Run("Deve devolver cadeias vazias quando o endpoint falha", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		r := NewParentResolver(testClient(), server.URL+"/", staticTokens("tkn"), nil, zerolog.Nop())
		leafFirst, rootFirst := r.Resolve(context.Background(), "t1")
		assert.Nil(t, leafFirst)
		assert.Nil(t, rootFirst)
	})

	t.Run("Deve devolver cadeias vazias com XML inválido", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<SEMAPHORE>"))
		}))
		defer server.Close()

		r := NewParentResolver(testClient(), server.URL+"/", staticTokens("tkn"), nil, zerolog.Nop())
		leafFirst, rootFirst := r.Resolve(context.Background(), "t1")
		assert.Nil(t, leafFirst)
		assert.Nil(t, rootFirst)
	})

	t.Run("Deve devolver cadeias vazias quando o token falha", func(t *testing.T) {
		tokens := auth.NewDirect(func(ctx context.Context) (string, time.Duration, error) {
			return "", 0, &auth.AuthError{Reason: "negado"}
		})
		r := NewParentResolver(testClient(), "http://127.0.0.1:0/", tokens, nil, zerolog.Nop())
		leafFirst, rootFirst := r.Resolve(context.Background(), "t1")
		assert.Nil(t, leafFirst)
		assert.Nil(t, rootFirst)
	})
}

func TestParentResolver_EscapesTermID(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`<SEMAPHORE/>`))
	}))
	defer server.Close()

	r := NewParentResolver(testClient(), server.URL+"/", staticTokens("tkn"), nil, zerolog.Nop())
	r.Resolve(context.Background(), "a b/c")

	assert.Equal(t, "/a%20b%2Fc", gotPath)
}
