package pod

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

const afnetworking = `{
  "name": "AFNetworking",
  "version": "4.0.1",
  "license": "MIT",
  "summary": "A delightful networking framework for Apple platforms.",
  "homepage": "https://github.com/AFNetworking/AFNetworking",
  "social_media_url": "https://twitter.com/AFNetworking",
  "authors": {
    "Mattt Thompson": "m@mattt.me"
  },
  "source": {
    "git": "https://github.com/AFNetworking/AFNetworking.git",
    "tag": "4.0.1"
  },
  "platforms": {
    "ios": "9.0",
    "osx": "10.10",
    "watchos": "2.0",
    "tvos": "9.0"
  }
}`

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(afnetworking))
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	if spec.Name != "AFNetworking" || spec.Version != "4.0.1" {
		t.Errorf("name/version = %s/%s", spec.Name, spec.Version)
	}
	if spec.License != "MIT" {
		t.Errorf("License = %q, want MIT", spec.License)
	}
	if !reflect.DeepEqual([]string(spec.Authors), []string{"Mattt Thompson"}) {
		t.Errorf("Authors = %v", spec.Authors)
	}
	if spec.Source.URL() != "https://github.com/AFNetworking/AFNetworking.git" {
		t.Errorf("Source.URL() = %q", spec.Source.URL())
	}
	if len(spec.Screenshots) != 0 {
		t.Errorf("Screenshots = %v, want none", spec.Screenshots)
	}
}

func TestParseSpecShapes(t *testing.T) {
	tests := []struct {
		name            string
		json            string
		wantLicense     License
		wantAuthors     []string
		wantScreenshots []string
		wantSource      string
	}{
		{
			name:        "license object",
			json:        `{"name":"A","version":"1.0","license":{"type":"Apache 2.0","file":"LICENSE"}}`,
			wantLicense: "Apache 2.0",
		},
		{
			name:        "authors string",
			json:        `{"name":"A","version":"1.0","authors":"Jane Doe"}`,
			wantAuthors: []string{"Jane Doe"},
		},
		{
			name:        "authors list",
			json:        `{"name":"A","version":"1.0","authors":["Zed","Amy"]}`,
			wantAuthors: []string{"Zed", "Amy"},
		},
		{
			name:        "authors map keeps file order",
			json:        `{"name":"A","version":"1.0","authors":{"Zed":"z@x","Amy":"a@x","Bo":{"email":"b@x"}}}`,
			wantAuthors: []string{"Zed", "Amy", "Bo"},
		},
		{
			name:            "screenshots list",
			json:            `{"name":"A","version":"1.0","screenshots":["https://x/1.png","https://x/2.png"]}`,
			wantScreenshots: []string{"https://x/1.png", "https://x/2.png"},
		},
		{
			name:            "screenshot alias",
			json:            `{"name":"A","version":"1.0","screenshot":"https://x/only.png"}`,
			wantScreenshots: []string{"https://x/only.png"},
		},
		{
			name: "null fields",
			json: `{"name":"A","version":"1.0","license":null,"authors":null,"screenshots":null}`,
		},
		{
			name:       "http source",
			json:       `{"name":"A","version":"1.0","source":{"http":"https://dl.example.com/A.zip"}}`,
			wantSource: "https://dl.example.com/A.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSpec([]byte(tt.json))
			if err != nil {
				t.Fatalf("ParseSpec: %v", err)
			}
			if spec.License != tt.wantLicense {
				t.Errorf("License = %q, want %q", spec.License, tt.wantLicense)
			}
			if len(spec.Authors) != 0 || len(tt.wantAuthors) != 0 {
				if !reflect.DeepEqual([]string(spec.Authors), tt.wantAuthors) {
					t.Errorf("Authors = %v, want %v", spec.Authors, tt.wantAuthors)
				}
			}
			if len(spec.Screenshots) != 0 || len(tt.wantScreenshots) != 0 {
				if !reflect.DeepEqual([]string(spec.Screenshots), tt.wantScreenshots) {
					t.Errorf("Screenshots = %v, want %v", spec.Screenshots, tt.wantScreenshots)
				}
			}
			if spec.Source.URL() != tt.wantSource {
				t.Errorf("Source.URL() = %q, want %q", spec.Source.URL(), tt.wantSource)
			}
		})
	}
}

func TestParseSpecInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"no name", `{"version":"1.0"}`},
		{"no version", `{"name":"A"}`},
		{"bad name", `{"name":"../etc","version":"1.0"}`},
		{"bad authors", `{"name":"A","version":"1.0","authors":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.json))
			if !perrors.Is(err, perrors.ErrCodeInvalidPackage) {
				t.Errorf("ParseSpec error = %v, want INVALID_PACKAGE", err)
			}
		})
	}
}

func TestReadSpecMissing(t *testing.T) {
	_, err := ReadSpec(filepath.Join(t.TempDir(), "missing.podspec.json"))
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("ReadSpec error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AFNetworking.podspec.json")
	os.WriteFile(path, []byte(afnetworking), 0o644)

	spec, err := ReadSpec(path)
	if err != nil {
		t.Fatalf("ReadSpec: %v", err)
	}
	if spec.Name != "AFNetworking" {
		t.Errorf("Name = %q", spec.Name)
	}
}

func TestPresent(t *testing.T) {
	spec, _ := ParseSpec([]byte(afnetworking))
	s := Present(spec)

	want := Summary{
		Name:        "AFNetworking",
		Homepage:    "https://github.com/AFNetworking/AFNetworking",
		SourceURL:   "https://github.com/AFNetworking/AFNetworking.git",
		Description: "A delightful networking framework for Apple platforms.",
		Authors:     "Mattt Thompson",
		Version:     "4.0.1",
		Platform:    "iOS 9.0 - OS X 10.10 - tvOS 9.0 - watchOS 2.0",
		License:     "MIT",
		Spec:        spec,
	}
	if !reflect.DeepEqual(s, want) {
		t.Errorf("Present() =\n%+v\nwant\n%+v", s, want)
	}
}

func TestPresentPrefersDescription(t *testing.T) {
	spec := &Spec{Name: "A", Version: "1", Summary: "short", Description: "  long **markdown**  "}
	if got := Present(spec).Description; got != "long **markdown**" {
		t.Errorf("Description = %q", got)
	}
}

func TestPresentCopiesScreenshots(t *testing.T) {
	spec := &Spec{Name: "A", Version: "1", Screenshots: Screenshots{"https://x/1.png"}}
	s := Present(spec)
	s.Screenshots[0] = "changed"
	if spec.Screenshots[0] != "https://x/1.png" {
		t.Error("Present should not alias the spec's screenshots")
	}
}

func TestToSentence(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"Amy"}, "Amy"},
		{[]string{"Amy", "Zed"}, "Amy and Zed"},
		{[]string{"Amy", "Bob", "Zed"}, "Amy, Bob and Zed"},
		{[]string{"Amy", " ", "Zed"}, "Amy and Zed"},
	}
	for _, tt := range tests {
		if got := ToSentence(tt.in); got != tt.want {
			t.Errorf("ToSentence(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlatformString(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want string
	}{
		{"none means all", nil, "iOS - OS X - tvOS - watchOS"},
		{"single", map[string]string{"ios": "12.0"}, "iOS 12.0"},
		{"case-insensitive order", map[string]string{"watchos": "4.0", "ios": "11.0", "osx": "10.13"}, "iOS 11.0 - OS X 10.13 - watchOS 4.0"},
		{"no version", map[string]string{"tvos": ""}, "tvOS"},
		{"unknown key kept", map[string]string{"android": "21"}, "android 21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlatformString(tt.in); got != tt.want {
				t.Errorf("PlatformString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
