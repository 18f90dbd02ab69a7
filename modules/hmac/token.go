// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hmac

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"conduit/modules/clock"
)

// Claims is the signed payload of an identity token.
type Claims struct {
	Username  string `json:"username"`
	ExpiresAt int64  `json:"exp"`
}

// TokenIssuer issues and verifies identity tokens carried in the
// "Authorization: Token <token>" header.
type TokenIssuer struct {
	signer *HMACSigner
	clock  clock.Clock
}

func NewTokenIssuer(signer *HMACSigner, c clock.Clock) *TokenIssuer {
	if c == nil {
		c = clock.RealClockProvider()
	}
	return &TokenIssuer{signer: signer, clock: c}
}

func (i *TokenIssuer) Issue(username string, ttl time.Duration) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: empty username", ErrInvalidToken)
	}
	payload, err := json.Marshal(Claims{
		Username:  username,
		ExpiresAt: i.clock.Now().Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	return i.signer.Sign(payload)
}

// Parse verifies the signature and expiry of token and returns its claims.
func (i *TokenIssuer) Parse(token string) (*Claims, error) {
	payload, err := i.signer.Verify(token)
	if err != nil {
		return nil, err
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	if i.clock.Now().Unix() >= claims.ExpiresAt {
		return nil, ErrExpiredToken
	}
	return &claims, nil
}
