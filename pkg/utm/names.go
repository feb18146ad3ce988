/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utm

// SnapshotKey is the fixed storage key under which a session's snapshot lives
const SnapshotKey = "utmParams"

// The recognized marketing parameter names
const (
	Source   = "utm_source"
	Medium   = "utm_medium"
	Campaign = "utm_campaign"
	Term     = "utm_term"
	Content  = "utm_content"
)

// Names lists the recognized marketing parameter names. No others are tracked.
var Names = [...]string{Source, Medium, Campaign, Term, Content}

// IsMarketingParam returns true if name is one of the recognized names
func IsMarketingParam(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// HasMarketingParams returns true if any recognized name is present in p
// with a non-empty value
func HasMarketingParams(p *Params) bool {
	for _, n := range Names {
		if v, ok := p.Get(n); ok && v != "" {
			return true
		}
	}
	return false
}

// Marketing returns the subset of p whose names are recognized, in p's order
func (p *Params) Marketing() *Params {
	out := NewParams()
	if p == nil {
		return out
	}
	for _, k := range p.keys {
		if IsMarketingParam(k) {
			out.Set(k, p.values[k])
		}
	}
	return out
}
