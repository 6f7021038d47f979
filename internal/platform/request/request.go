// Copyright (c) 2026 Roastlog. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common body decoding patterns, ensuring consistent error
handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/roastlog/roastlog/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidBody if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidBody
	}
	return nil
}
