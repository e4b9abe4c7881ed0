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

// CollectionDetailsPath is the url path to the batched collection lookup.
const CollectionDetailsPath = "ISteamRemoteStorage/GetCollectionDetails/v0001"

// FileDetailsPath is the url path to the batched published file lookup.
const FileDetailsPath = "ISteamRemoteStorage/GetPublishedFileDetails/v1"

// File types reported for collection children. The API uses more values
// than these; anything else is unknown to the downloader.
const (
	// FileTypeFile is a downloadable leaf item (a plugin package).
	FileTypeFile = 0
	// FileTypeCollection is a nested collection reference.
	FileTypeCollection = 2
)

// CollectionChild is a single item referenced by a collection.
type CollectionChild struct {
	PublishedFileID string `json:"publishedfileid"`
	FileType        int    `json:"filetype"`
}

// CollectionDetails describes one collection returned by the API. A
// collection the API did not recognize comes back without children.
type CollectionDetails struct {
	PublishedFileID string            `json:"publishedfileid"`
	Children        []CollectionChild `json:"children"`
}

// PublishedFile describes one published file returned by the API. FileURL
// is empty when the API does not expose a download link for the item.
type PublishedFile struct {
	PublishedFileID string `json:"publishedfileid"`
	Title           string `json:"title"`
	FileURL         string `json:"file_url"`
	TimeUpdated     int64  `json:"time_updated"`
}

// The structs below mirror the response envelope of the remote storage
// endpoints. The interesting payload sits two levels down.

type collectionDetailsResponse struct {
	Response struct {
		CollectionDetails []CollectionDetails `json:"collectiondetails"`
	} `json:"response"`
}

type fileDetailsResponse struct {
	Response struct {
		PublishedFileDetails []PublishedFile `json:"publishedfiledetails"`
	} `json:"response"`
}

// CollectionDetails performs one batched GetCollectionDetails call for the
// given collection ids.
func (c *Client) CollectionDetails(ids []string) ([]CollectionDetails, error) {
	result := &collectionDetailsResponse{}
	if err := c.post(CollectionDetailsPath, batchForm("collectioncount", ids), result); err != nil {
		return nil, err
	}
	return result.Response.CollectionDetails, nil
}

// FileDetails performs one batched GetPublishedFileDetails call for the
// given published file ids.
func (c *Client) FileDetails(ids []string) ([]PublishedFile, error) {
	result := &fileDetailsResponse{}
	if err := c.post(FileDetailsPath, batchForm("itemcount", ids), result); err != nil {
		return nil, err
	}
	return result.Response.PublishedFileDetails, nil
}
