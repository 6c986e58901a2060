// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RegEx components used below:

const assignment = "([ \t]*[=:][ \t]*)"
const dot = "(\\.)"
const leftBracket = "(\\[)"
const rightBracket = "(\\])"
const sectionName = "([0-9A-Za-z_\\-/:\\.]+)"
const separator = "([ \t]+|([ \t]*,[ \t]*))"
const token = "(([0-9A-Za-z_\\*\\-/:\\.\\[\\]]+)\\$?)"
const whiteSpace = "([ \t]+)"

// A string to load looks like:
//
//   <section_name_0>.<option_name_0> =
//   <section_name_1>.<option_name_1> : <value_1>
//   <section_name_2>.<option_name_2> = <value_2>, <value_3>

var stringRE = regexp.MustCompile("\\A" + token + dot + token + assignment + "(" + token + "(" + separator + token + ")*)?\\z")
var sectionNameOptionNameSeparatorRE = regexp.MustCompile(dot)

// A .conf file to load typically looks like:
//
//   [<section_name_1>]
//   <option_name_1> = <value_1>
//   <option_name_2> : <value_2> <value_3>
//
//   # A comment on it's own line starting with '#'
//   ; A comment on it's own line starting with ';'
//
//   .include <included .conf path>

var sectionHeaderLineRE = regexp.MustCompile("\\A" + leftBracket + token + rightBracket + "\\z")
var sectionNameRE = regexp.MustCompile(sectionName)
var optionLineRE = regexp.MustCompile("\\A" + token + assignment + "(" + token + "(" + separator + token + ")*)?\\z")
var optionNameOptionValuesSeparatorRE = regexp.MustCompile(assignment)
var optionValueSeparatorRE = regexp.MustCompile(separator)
var includeLineRE = regexp.MustCompile("\\A\\.include" + whiteSpace + token + "\\z")
var includeFilePathSeparatorRE = regexp.MustCompile(whiteSpace)

func splitOptionValues(optionValues string) (optionValuesSplit []string) {
	optionValuesSplit = optionValueSeparatorRE.Split(optionValues, -1)
	if (1 == len(optionValuesSplit)) && ("" == optionValuesSplit[0]) {
		optionValuesSplit = []string{}
	}
	return
}

func (confMap ConfMap) setOption(sectionName string, optionName string, optionValues []string) {
	section, found := confMap[sectionName]
	if !found {
		section = make(ConfMapSection)
		confMap[sectionName] = section
	}
	section[optionName] = optionValues
}

// UpdateFromString modifies a pre-existing ConfMap based on an update
// specified in confString (e.g., from an extra command-line argument)
func (confMap ConfMap) UpdateFromString(confString string) (err error) {
	confStringTrimmed := strings.Trim(confString, " \t")

	if 0 == len(confStringTrimmed) {
		err = fmt.Errorf("trimmed confString: \"%v\" was found to be empty", confString)
		return
	}

	if !stringRE.MatchString(confStringTrimmed) {
		err = fmt.Errorf("malformed confString: \"%v\"", confString)
		return
	}

	sectionNameAndOptionPayload := sectionNameOptionNameSeparatorRE.Split(confStringTrimmed, 2)
	optionNameAndOptionValues := optionNameOptionValuesSeparatorRE.Split(sectionNameAndOptionPayload[1], 2)

	confMap.setOption(sectionNameAndOptionPayload[0], optionNameAndOptionValues[0], splitOptionValues(optionNameAndOptionValues[1]))

	err = nil
	return
}

// UpdateFromStrings applies UpdateFromString to each of confStrings in order
func (confMap ConfMap) UpdateFromStrings(confStrings []string) (err error) {
	for _, confString := range confStrings {
		err = confMap.UpdateFromString(confString)
		if nil != err {
			return
		}
	}
	err = nil
	return
}

// UpdateFromFile modifies a pre-existing ConfMap based on updates specified in confFilePath.
// A confFilePath of "-" reads from os.Stdin.
func (confMap ConfMap) UpdateFromFile(confFilePath string) (err error) {
	var (
		confFileBytes []byte
	)

	if "-" == confFilePath {
		confFileBytes, err = ioutil.ReadAll(os.Stdin)
	} else {
		confFileBytes, err = ioutil.ReadFile(confFilePath)
	}
	if nil != err {
		return
	}

	err = confMap.updateFromReader(confFilePath, bytes.NewReader(confFileBytes), len(confFileBytes))

	return
}

func (confMap ConfMap) updateFromReader(confFilePath string, reader io.Reader, confFileLen int) (err error) {
	var (
		currentLine        string
		currentLineNumber  int
		currentSectionName string
		lastLineTerminated bool
		nestedConfFilePath string
		rawLine            string
		scanner            *bufio.Scanner
	)

	if 0 == confFileLen {
		err = nil
		return
	}

	scanner = bufio.NewScanner(reader)
	scanner.Split(scanLinesKeepingTerminator)

	for scanner.Scan() {
		currentLineNumber++

		rawLine = scanner.Text()

		if !utf8.ValidString(rawLine) {
			err = fmt.Errorf("file %v contained invalid UTF-8 on line %v", confFilePath, currentLineNumber)
			return
		}

		lastLineTerminated = strings.HasSuffix(rawLine, "\n")

		currentLine = strings.TrimSuffix(rawLine, "\n")
		currentLine = strings.SplitN(currentLine, ";", 2)[0] // Trim comment after ';'
		currentLine = strings.SplitN(currentLine, "#", 2)[0] // Trim comment after '#'
		currentLine = strings.Trim(currentLine, " \t\r")

		if 0 == len(currentLine) {
			continue
		}

		switch {
		case includeLineRE.MatchString(currentLine):
			nestedConfFilePath = includeFilePathSeparatorRE.Split(currentLine, 2)[1]

			if !filepath.IsAbs(nestedConfFilePath) {
				absConfFilePath, absErr := filepath.Abs(confFilePath)
				if nil != absErr {
					err = absErr
					return
				}
				nestedConfFilePath = filepath.Join(filepath.Dir(absConfFilePath), nestedConfFilePath)
			}

			err = confMap.UpdateFromFile(nestedConfFilePath)
			if nil != err {
				return
			}

			currentSectionName = ""
		case sectionHeaderLineRE.MatchString(currentLine):
			currentSectionName = sectionNameRE.FindString(currentLine)
		default:
			if "" == currentSectionName {
				err = fmt.Errorf("file %v did not start with a Section Name", confFilePath)
				return
			}

			if !optionLineRE.MatchString(currentLine) {
				err = fmt.Errorf("file %v malformed line '%v'", confFilePath, currentLine)
				return
			}

			optionNameAndOptionValues := optionNameOptionValuesSeparatorRE.Split(currentLine, 2)

			confMap.setOption(currentSectionName, optionNameAndOptionValues[0], splitOptionValues(optionNameAndOptionValues[1]))
		}
	}

	err = scanner.Err()
	if nil != err {
		return
	}

	if !lastLineTerminated {
		err = fmt.Errorf("file %v did not end in a '\\n' character", confFilePath)
		return
	}

	err = nil
	return
}

// scanLinesKeepingTerminator is bufio.ScanLines without stripping the '\n'
// so that a missing final newline can be detected.
func scanLinesKeepingTerminator(data []byte, atEOF bool) (advance int, lineToken []byte, err error) {
	if atEOF && 0 == len(data) {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[0 : i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
