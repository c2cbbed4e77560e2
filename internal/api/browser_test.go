package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/stretchr/testify/require"
)

type page struct {
	status   int
	location string
	body     string
	header   http.Header
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)

	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
		header:   resp.Header,
	}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, http.NoBody)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) postForm(path string, form url.Values) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(path string, fields map[string]string, filename, fileBody string) page {
	b.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(b.t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("attachment", filename)
		require.NoError(b.t, err)
		_, err = io.WriteString(fw, fileBody)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, b.base+path, &buf)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

// signup registers through the signup form.
func (b *browser) signup(username, password string) page {
	b.t.Helper()
	token := csrfFrom(b.t, b.get("/signup").body)
	return b.postForm("/signup", url.Values{
		"csrf_token": {token},
		"username":   {username},
		"password":   {password},
	})
}

// login signs in through the login form.
func (b *browser) login(username, password string) page {
	b.t.Helper()
	token := csrfFrom(b.t, b.get("/login").body)
	return b.postForm("/login", url.Values{
		"csrf_token": {token},
		"username":   {username},
		"password":   {password},
	})
}

// compose writes a note through the compose form.
func (b *browser) compose(title, content string) page {
	b.t.Helper()
	token := csrfFrom(b.t, b.get("/compose").body)
	return b.postMultipart("/compose", map[string]string{
		"csrf_token": token,
		"title":      title,
		"content":    content,
	}, "", "")
}
