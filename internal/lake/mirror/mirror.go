// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mirror archives lake partitions about to be deleted locally to a
// remote Backblaze B2 bucket, so raw-layer history survives past the lake's
// local retention window.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog/log"
)

type Client struct {
	Bucket string
	KeyID  string
	AppKey string
}

func New(bucket, keyID, appKey string) *Client {
	return &Client{Bucket: bucket, KeyID: keyID, AppKey: appKey}
}

// UploadDir mirrors every file in partDir to "<dataset>/<partition-basename>/<file>"
// in the configured bucket, generalizing the teacher's single-file
// backblaze.Upload into a whole-partition archive call.
func (c *Client) UploadDir(ctx context.Context, dataset, partDir string) error {
	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          c.KeyID,
		ApplicationKey: c.AppKey,
	})
	if err != nil {
		return fmt.Errorf("authorize backblaze: %w", err)
	}

	bucket, err := b2.Bucket(c.Bucket)
	if err != nil {
		return fmt.Errorf("lookup bucket %s: %w", c.Bucket, err)
	}
	if bucket == nil {
		return errors.New("bucket not found: " + c.Bucket)
	}

	entries, err := os.ReadDir(partDir)
	if err != nil {
		return err
	}

	prefix := fmt.Sprintf("%s/%s", dataset, filepath.Base(partDir))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		path := filepath.Join(partDir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return err
		}

		outName := fmt.Sprintf("%s/%s", prefix, e.Name())
		file, err := bucket.UploadFile(outName, map[string]string{"dataset": dataset}, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("upload %s: %w", outName, err)
		}
		log.Ctx(ctx).Info().Str("file", file.Name).Int64("size", file.ContentLength).Msg("mirrored lake partition file")
	}
	return nil
}
