// Package meta sniffs Gradle build descriptors of an Android project for the
// values the digest needs: the application id (used to guess the primary
// source package), the module name, and the target JDK.
//
// Goals:
//   - Best-effort parsing: tolerate partial/absent files
//   - No evaluation of Groovy/Kotlin DSL, regexes only
//   - Deterministic probe order (app module first, then the root project)
package meta

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Info is a minimal summary of an Android/Gradle project.
type Info struct {
	Build           string `json:"build,omitempty"`            // "gradle" or "" when no descriptor exists
	Module          string `json:"module,omitempty"`           // rootProject.name from settings.gradle(.kts)
	ApplicationID   string `json:"application_id,omitempty"`   // defaultConfig.applicationId
	Namespace       string `json:"namespace,omitempty"`        // android.namespace (AGP 7+)
	ManifestPackage string `json:"manifest_package,omitempty"` // package= attribute of the main AndroidManifest.xml
	JDK             string `json:"jdk,omitempty"`              // e.g. "17" from compile options / jvmTarget
}

// Package returns the best guess of the primary source package: the
// application id, then the namespace, then the manifest package.
func (i Info) Package() string {
	return firstNonEmpty(i.ApplicationID, i.Namespace, i.ManifestPackage)
}

// Descriptor probe order. The app module usually carries applicationId.
var buildFiles = []string{
	"app/build.gradle.kts",
	"app/build.gradle",
	"build.gradle.kts",
	"build.gradle",
}

var (
	reApplicationID = regexp.MustCompile(`(?m)^\s*applicationId\s*(?:=\s*)?["']([A-Za-z0-9_.]+)["']`)
	reNamespace     = regexp.MustCompile(`(?m)^\s*namespace\s*(?:=\s*)?["']([A-Za-z0-9_.]+)["']`)
	reRootName      = regexp.MustCompile(`(?m)^\s*rootProject\.name\s*=\s*["']([^"']+)["']`)
	reJvmTarget     = regexp.MustCompile(`(?m)jvmTarget\s*=\s*(?:JvmTarget\.JVM_|["'])(?:1\.)?(\d{1,2})`)
	reJavaVersion   = regexp.MustCompile(`(?m)(?:sourceCompatibility|targetCompatibility)\s*=?\s*JavaVersion\.VERSION_(?:1_)?(\d{1,2})`)
)

// Detect probes the project rooted at fs. It never fails; unreadable or
// missing descriptors leave the corresponding fields empty.
func Detect(fs billy.Filesystem) Info {
	var inf Info
	for _, p := range buildFiles {
		text, ok := readText(fs, p)
		if !ok {
			continue
		}
		inf.Build = "gradle"
		if inf.ApplicationID == "" {
			inf.ApplicationID = firstSubmatch(reApplicationID, text)
		}
		if inf.Namespace == "" {
			inf.Namespace = firstSubmatch(reNamespace, text)
		}
		if inf.JDK == "" {
			inf.JDK = firstNonEmpty(firstSubmatch(reJvmTarget, text), firstSubmatch(reJavaVersion, text))
		}
	}
	for _, p := range []string{"settings.gradle.kts", "settings.gradle"} {
		if text, ok := readText(fs, p); ok {
			inf.Module = firstSubmatch(reRootName, text)
			break
		}
	}
	if b, err := util.ReadFile(fs, "app/src/main/AndroidManifest.xml"); err == nil {
		inf.ManifestPackage = manifestPackage(b)
	}
	return inf
}

type manifestXML struct {
	XMLName xml.Name `xml:"manifest"`
	Package string   `xml:"package,attr"`
}

func manifestPackage(b []byte) string {
	var m manifestXML
	if err := xml.Unmarshal(b, &m); err != nil {
		return ""
	}
	return strings.TrimSpace(m.Package)
}

func readText(fs billy.Filesystem, path string) (string, bool) {
	b, err := util.ReadFile(fs, path)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func firstSubmatch(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return ""
}
