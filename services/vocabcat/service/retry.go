// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import (
	"context"

	"github.com/cenkalti/backoff/v5"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

// retryPersist makes up to three attempts in all at a persistence write (the
// first call plus at most two retries) with a capped exponential backoff,
// retrying only when the failure is classified PersistenceUnavailable.
// Any other error kind is returned immediately without retrying, since it
// reflects a bad request or a logic error the same write would only repeat.
// Grounded on the teacher's go.mod dependency github.com/cenkalti/backoff/v5
// for bounded retry of a fallible I/O call.
func retryPersist(ctx context.Context, fn func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := fn(); err != nil {
			if vocaberr.KindOf(err) == vocaberr.PersistenceUnavailable {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}, backoff.WithMaxTries(3), backoff.WithBackOff(backoff.NewExponentialBackOff()))
	return err
}
