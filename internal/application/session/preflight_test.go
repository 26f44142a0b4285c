package session

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/recogaize/internal/domain"
)

type stubProber struct{ err error }

func (p stubProber) Probe(data []byte) (domain.ImageInfo, error) {
	return domain.ImageInfo{Format: "jpeg", Bytes: len(data)}, p.err
}

func TestPreflightValidate(t *testing.T) {
	cases := []struct {
		name   string
		image  domain.ImageFile
		prober stubProber
		max    int64
		want   string
	}{
		{"ok", domain.ImageFile{ContentType: "image/png", Data: []byte("x")}, stubProber{}, 10, ""},
		{"not image type", domain.ImageFile{ContentType: "text/plain", Data: []byte("x")}, stubProber{}, 0, domain.MsgNotImage},
		{"empty", domain.ImageFile{ContentType: "image/png"}, stubProber{}, 0, domain.MsgEmptyFile},
		{"too large MB", domain.ImageFile{Data: make([]byte, 2<<20+1)}, stubProber{}, 2 << 20, "File size too large. Maximum size is 2MB"},
		{"too large bytes", domain.ImageFile{Data: []byte("abcdef")}, stubProber{}, 5, "File size too large. Maximum size is 5 bytes"},
		{"undecodable", domain.ImageFile{Data: []byte("x")}, stubProber{err: errors.New("bad")}, 0, domain.MsgNotImage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPreflightClient(nil, tc.prober, tc.max)
			err := p.Validate(tc.image)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var ce *domain.CaptionError
			if !errors.As(err, &ce) || ce.Message != tc.want {
				t.Fatalf("Validate() error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestPreflightBlocksUploadInSession(t *testing.T) {
	client := &scriptedClient{responses: map[string]scriptedReply{}}
	s := New(Options{Client: client, Validate: true, Prober: stubProber{}, MaxBytes: 1})

	st, err := s.Generate(context.Background(), domain.ImageFile{Name: "big.jpg", Data: []byte("too big")})
	if err == nil {
		t.Fatal("expected preflight error")
	}
	if st.Error != "File size too large. Maximum size is 1 bytes" {
		t.Fatalf("state = %+v", st)
	}
	if client.calls != 0 {
		t.Fatalf("client called %d times", client.calls)
	}
}
