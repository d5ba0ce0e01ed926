//  Copyright (c) 2026 Uber Technologies, Inc.
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

// Package config holds the selector vocabulary the checker matches against.
// The defaults mirror the framework conventions the checker was written for;
// a yaml file can widen or replace them per codebase.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SingletonAccessor identifies a class-level call producing a process-wide
// shared object that objects commonly register themselves on as observers.
type SingletonAccessor struct {
	Class    string `yaml:"class"`
	Selector string `yaml:"selector"`
}

// Key renders the canonical identity of the singleton, e.g.
// "+[NSNotificationCenter defaultCenter]".
func (s SingletonAccessor) Key() string {
	return "+[" + s.Class + " " + s.Selector + "]"
}

// Config is the full selector vocabulary for one analysis run.
type Config struct {
	// PseudoConstructorPrefixes are matched case-insensitively against method
	// selectors; a match makes the method a bootstrap point where every
	// dangerous back-reference is assumed already cleared.
	PseudoConstructorPrefixes []string `yaml:"pseudo-constructor-prefixes"`

	// TeardownSelector names the method whose exit is the implicit release
	// point for every field under automatic reference counting.
	TeardownSelector string `yaml:"teardown-selector"`

	// ReleaseSelectors are the explicit ownership-release calls of manual
	// reference counting.
	ReleaseSelectors []string `yaml:"release-selectors"`

	// AddTargetPrefixes / RemoveTargetPrefixes recognize target-action
	// registration APIs; AddObserverPrefixes / RemoveObserverPrefixes
	// recognize observer registration APIs.
	AddTargetPrefixes      []string `yaml:"add-target-prefixes"`
	RemoveTargetPrefixes   []string `yaml:"remove-target-prefixes"`
	AddObserverPrefixes    []string `yaml:"add-observer-prefixes"`
	RemoveObserverPrefixes []string `yaml:"remove-observer-prefixes"`

	// ObservableSingletons lists shared objects whose observer registrations
	// are collected per class (informational; not release-verified).
	ObservableSingletons []SingletonAccessor `yaml:"observable-singletons"`
}

// Default returns the built-in vocabulary.
func Default() *Config {
	return &Config{
		PseudoConstructorPrefixes: []string{
			"init", "_init", "setup", "_setup", "load", "_load",
			"viewdidload", "_viewdidload",
		},
		TeardownSelector:       "dealloc",
		ReleaseSelectors:       []string{"release", "autorelease"},
		AddTargetPrefixes:      []string{"addTarget:"},
		RemoveTargetPrefixes:   []string{"removeTarget:"},
		AddObserverPrefixes:    []string{"addObserver:"},
		RemoveObserverPrefixes: []string{"removeObserver:"},
		ObservableSingletons: []SingletonAccessor{
			{Class: "NSNotificationCenter", Selector: "defaultCenter"},
		},
	}
}

// Load reads a yaml config file. Fields absent from the file keep their
// defaults.
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %w", filename, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", filename, err)
	}
	if cfg.TeardownSelector == "" {
		return nil, fmt.Errorf("config file %s: teardown-selector must not be empty", filename)
	}
	return cfg, nil
}

// IsPseudoConstructorName reports whether the selector matches one of the
// pseudo-constructor prefixes, ignoring case.
func (c *Config) IsPseudoConstructorName(selector string) bool {
	lower := strings.ToLower(selector)
	for _, p := range c.PseudoConstructorPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// IsReleaseSelector reports whether the selector is an explicit
// ownership-release call.
func (c *Config) IsReleaseSelector(selector string) bool {
	for _, s := range c.ReleaseSelectors {
		if selector == s {
			return true
		}
	}
	return false
}

// HasAnyPrefix reports whether the selector starts with one of the prefixes.
func HasAnyPrefix(selector string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(selector, p) {
			return true
		}
	}
	return false
}

// SingletonKey returns the canonical key of the configured singleton matching
// the class-level call, or "" when it matches none.
func (c *Config) SingletonKey(class, selector string) string {
	for _, s := range c.ObservableSingletons {
		if s.Class == class && s.Selector == selector {
			return s.Key()
		}
	}
	return ""
}
