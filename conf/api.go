// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package conf loads INI-style configuration into a ConfMap.
//
// A ConfMap is accessed via confMap[section_name][option_name][option_value_index]
// or via the FetchOptionValue*() methods below. Values come from .conf files
// and from "Section.Option=value" strings (typically trailing command-line
// arguments that override the file).
package conf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type ConfMapOption []string
type ConfMapSection map[string]ConfMapOption
type ConfMap map[string]ConfMapSection

// MakeConfMap returns an newly created empty ConfMap
func MakeConfMap() (confMap ConfMap) {
	confMap = make(ConfMap)
	return
}

// MakeConfMapFromFile returns a newly created ConfMap loaded with the contents of the confFilePath-specified file
func MakeConfMapFromFile(confFilePath string) (confMap ConfMap, err error) {
	confMap = MakeConfMap()
	err = confMap.UpdateFromFile(confFilePath)
	return
}

// MakeConfMapFromStrings returns a newly created ConfMap loaded with the contents specified in confStrings
func MakeConfMapFromStrings(confStrings []string) (confMap ConfMap, err error) {
	confMap = MakeConfMap()
	for _, confString := range confStrings {
		err = confMap.UpdateFromString(confString)
		if nil != err {
			err = fmt.Errorf("Error building confMap from conf strings: %v", err)
			return
		}
	}

	err = nil
	return
}

// VerifyOptionIsMissing returns an error if [sectionName]optionName exists
func (confMap ConfMap) VerifyOptionIsMissing(sectionName string, optionName string) (err error) {
	section, ok := confMap[sectionName]
	if !ok {
		err = nil
		return
	}

	_, ok = section[optionName]
	if ok {
		err = fmt.Errorf("[%v]%v exists", sectionName, optionName)
	} else {
		err = nil
	}

	return
}

// VerifyOptionValueIsEmpty returns an error if [sectionName]optionName's string value is not empty
func (confMap ConfMap) VerifyOptionValueIsEmpty(sectionName string, optionName string) (err error) {
	option, err := confMap.FetchOptionValueStringSlice(sectionName, optionName)
	if nil != err {
		return
	}

	if 0 == len(option) {
		err = nil
	} else {
		err = fmt.Errorf("[%v]%v must have no value", sectionName, optionName)
	}

	return
}

// FetchOptionValueStringSlice returns [sectionName]optionName's string values as a []string
func (confMap ConfMap) FetchOptionValueStringSlice(sectionName string, optionName string) (optionValue []string, err error) {
	optionValue = []string{}

	section, ok := confMap[sectionName]
	if !ok {
		err = fmt.Errorf("[%v] missing", sectionName)
		return
	}

	option, ok := section[optionName]
	if !ok {
		err = fmt.Errorf("[%v]%v missing", sectionName, optionName)
		return
	}

	optionValue = option

	err = nil
	return
}

// FetchOptionValueString returns [sectionName]optionName's single string value
func (confMap ConfMap) FetchOptionValueString(sectionName string, optionName string) (optionValue string, err error) {
	optionValue = ""

	optionValueSlice, err := confMap.FetchOptionValueStringSlice(sectionName, optionName)
	if nil != err {
		return
	}

	if 1 != len(optionValueSlice) {
		err = fmt.Errorf("[%v]%v must be single-valued", sectionName, optionName)
		return
	}

	optionValue = optionValueSlice[0]

	err = nil
	return
}

// FetchOptionValueBool returns [sectionName]optionName's single string value converted to a bool
func (confMap ConfMap) FetchOptionValueBool(sectionName string, optionName string) (optionValue bool, err error) {
	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	switch strings.ToLower(optionValueString) {
	case "yes", "on", "true":
		optionValue = true
	case "no", "off", "false":
		optionValue = false
	default:
		err = fmt.Errorf("Couldn't interpret %q as boolean (expected one of 'true'/'false'/'yes'/'no'/'on'/'off')", optionValueString)
		return
	}

	err = nil
	return
}

func (confMap ConfMap) fetchOptionValueUint(sectionName string, optionName string, bitSize int) (optionValue uint64, err error) {
	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValue, err = parseUint(sectionName, optionName, optionValueString, bitSize)

	return
}

func parseUint(sectionName string, optionName string, optionValueString string, bitSize int) (optionValue uint64, err error) {
	optionValue, strconvErr := strconv.ParseUint(optionValueString, 10, bitSize)
	if nil != strconvErr {
		err = fmt.Errorf("[%v]%v strconv.ParseUint() error: %v", sectionName, optionName, strconvErr)
		return
	}

	err = nil
	return
}

// FetchOptionValueUint32 returns [sectionName]optionName's single string value converted to a uint32
func (confMap ConfMap) FetchOptionValueUint32(sectionName string, optionName string) (optionValue uint32, err error) {
	optionValueUint64, err := confMap.fetchOptionValueUint(sectionName, optionName, 32)
	if nil != err {
		return
	}

	optionValue = uint32(optionValueUint64)

	err = nil
	return
}

// FetchOptionValueUint64 returns [sectionName]optionName's single string value converted to a uint64
func (confMap ConfMap) FetchOptionValueUint64(sectionName string, optionName string) (optionValue uint64, err error) {
	optionValue, err = confMap.fetchOptionValueUint(sectionName, optionName, 64)
	return
}

// FetchOptionValueUint64Slice returns each of [sectionName]optionName's string values converted to a uint64
func (confMap ConfMap) FetchOptionValueUint64Slice(sectionName string, optionName string) (optionValue []uint64, err error) {
	optionValueStringSlice, err := confMap.FetchOptionValueStringSlice(sectionName, optionName)
	if nil != err {
		return
	}

	optionValue = make([]uint64, len(optionValueStringSlice))

	for i, optionValueString := range optionValueStringSlice {
		optionValue[i], err = parseUint(sectionName, optionName, optionValueString, 64)
		if nil != err {
			optionValue = nil
			return
		}
	}

	err = nil
	return
}

// FetchOptionValueFloat64 returns [sectionName]optionName's single string value converted to a float64
func (confMap ConfMap) FetchOptionValueFloat64(sectionName string, optionName string) (optionValue float64, err error) {
	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValue, strconvErr := strconv.ParseFloat(optionValueString, 64)
	if nil != strconvErr {
		err = fmt.Errorf("[%v]%v strconv.ParseFloat() error: %v", sectionName, optionName, strconvErr)
		return
	}

	err = nil
	return
}

// FetchOptionValueDuration returns [sectionName]optionName's single string value converted to a time.Duration
func (confMap ConfMap) FetchOptionValueDuration(sectionName string, optionName string) (optionValue time.Duration, err error) {
	optionValueString, err := confMap.FetchOptionValueString(sectionName, optionName)
	if nil != err {
		return
	}

	optionValue, err = time.ParseDuration(optionValueString)
	if nil != err {
		return
	}

	if 0 > optionValue {
		err = fmt.Errorf("[%v]%v is negative", sectionName, optionName)
		return
	}

	err = nil
	return
}

// Dump returns the ConfMap in .conf file form with sections and options sorted
func (confMap ConfMap) Dump() (confMapAsString string) {
	var (
		builder      strings.Builder
		optionNames  []string
		sectionNames []string
	)

	sectionNames = make([]string, 0, len(confMap))
	for sectionName := range confMap {
		sectionNames = append(sectionNames, sectionName)
	}
	sort.Strings(sectionNames)

	for i, sectionName := range sectionNames {
		if 0 < i {
			builder.WriteString("\n")
		}
		fmt.Fprintf(&builder, "[%s]\n", sectionName)

		section := confMap[sectionName]

		optionNames = make([]string, 0, len(section))
		for optionName := range section {
			optionNames = append(optionNames, optionName)
		}
		sort.Strings(optionNames)

		for _, optionName := range optionNames {
			optionValues := section[optionName]
			if 0 == len(optionValues) {
				fmt.Fprintf(&builder, "%s:\n", optionName)
			} else {
				fmt.Fprintf(&builder, "%s: %s\n", optionName, strings.Join(optionValues, ", "))
			}
		}
	}

	confMapAsString = builder.String()
	return
}
