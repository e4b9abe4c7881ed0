/*
Copyright The Helm Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package steam

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew(t *testing.T) {
	c, err := New(DefaultAPIHost)
	if err != nil {
		t.Errorf("error creating client: %s", err)
	}
	if c.BaseURL != DefaultAPIHost {
		t.Errorf("incorrect BaseURL. Expected %q but got %q", DefaultAPIHost, c.BaseURL)
	}

	if _, err := New("/no/host/here"); err != ErrHostnameNotProvided {
		t.Errorf("expected ErrHostnameNotProvided, got %v", err)
	}
}

const mockCollectionDetails = `{
  "response": {
    "result": 1,
    "resultcount": 2,
    "collectiondetails": [
      {
        "publishedfileid": "111",
        "result": 1,
        "children": [
          {"publishedfileid": "1001", "sortorder": 1, "filetype": 0},
          {"publishedfileid": "222", "sortorder": 2, "filetype": 2}
        ]
      },
      {
        "publishedfileid": "999",
        "result": 9
      }
    ]
  }
}`

func TestCollectionDetails(t *testing.T) {
	var gotPath string
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotForm = r.PostForm
		w.Write([]byte(mockCollectionDetails))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	details, err := c.CollectionDetails([]string{"111", "999"})
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/"+CollectionDetailsPath {
		t.Errorf("expected path %q, got %q", "/"+CollectionDetailsPath, gotPath)
	}
	for key, want := range map[string]string{
		"collectioncount":     "2",
		"publishedfileids[0]": "111",
		"publishedfileids[1]": "999",
	} {
		if got := gotForm[key]; len(got) != 1 || got[0] != want {
			t.Errorf("form field %s: expected %q, got %v", key, want, got)
		}
	}

	if len(details) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(details))
	}
	if len(details[0].Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(details[0].Children))
	}
	if details[0].Children[0].FileType != FileTypeFile {
		t.Errorf("expected filetype %d, got %d", FileTypeFile, details[0].Children[0].FileType)
	}
	if details[0].Children[1].FileType != FileTypeCollection {
		t.Errorf("expected filetype %d, got %d", FileTypeCollection, details[0].Children[1].FileType)
	}
	if len(details[1].Children) != 0 {
		t.Errorf("expected no children on the unknown collection, got %d", len(details[1].Children))
	}
}

const mockFileDetails = `{
  "response": {
    "result": 1,
    "resultcount": 2,
    "publishedfiledetails": [
      {
        "publishedfileid": "1001",
        "result": 1,
        "title": "A Plugin",
        "file_url": "http://cdn.example.com/1001",
        "time_updated": 1600000000
      },
      {
        "publishedfileid": "1002",
        "result": 1,
        "title": "No Download"
      }
    ]
  }
}`

func TestFileDetails(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.PostForm
		w.Write([]byte(mockFileDetails))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	files, err := c.FileDetails([]string{"1001", "1002"})
	if err != nil {
		t.Fatal(err)
	}

	if got := gotForm["itemcount"]; len(got) != 1 || got[0] != "2" {
		t.Errorf("form field itemcount: expected \"2\", got %v", got)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Title != "A Plugin" || files[0].FileURL != "http://cdn.example.com/1001" || files[0].TimeUpdated != 1600000000 {
		t.Errorf("unexpected file details: %+v", files[0])
	}
	if files[1].FileURL != "" {
		t.Errorf("expected empty file_url, got %q", files[1].FileURL)
	}
}

func TestRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.CollectionDetails([]string{"111"})
	re, ok := err.(*RemoteError)
	if !ok {
		t.Fatalf("expected *RemoteError, got %T (%v)", err, err)
	}
	if re.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, re.StatusCode)
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.FileDetails([]string{"1001"}); err == nil {
		t.Error("expected an error talking to a closed server")
	}
}
