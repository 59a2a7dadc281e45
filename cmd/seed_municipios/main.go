// seed_municipios genera el script SQL para poblar la tabla municipalities a
// partir del XML oficial Municipios.xml (código DANE y departamento).
//
// Uso: go run ./cmd/seed_municipios [ruta/Municipios.xml]
// Por defecto busca Municipios.xml en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_municipios.sql
//
// Solo genera el INSERT de cada municipio con is_active = false: habilitar
// una alcaldía en la plataforma es una decisión administrativa, no del seed.
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type parametros struct {
	Tabla struct {
		Valores []valor `xml:"valor"`
	} `xml:"tabla"`
}

type valor struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Otro   struct {
		Codigo string `xml:"codigo,attr"`
		Valor  string `xml:"valor,attr"`
	} `xml:"otro"`
}

func main() {
	xmlPath := "Municipios.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var p parametros
	dec := xml.NewDecoder(f)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&p); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	type muni struct{ code, name, department string }
	var munis []muni
	for _, v := range p.Tabla.Valores {
		if v.Cod == "" || v.Nombre == "" {
			continue
		}
		munis = append(munis, muni{
			code:       strings.TrimSpace(v.Cod),
			name:       strings.TrimSpace(v.Nombre),
			department: strings.TrimSpace(v.Otro.Valor),
		})
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_municipios.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Municipios de Colombia (código DANE)\n")
	out.WriteString("-- Generado desde Municipios.xml (DIAN)\n\n")
	for _, m := range munis {
		fmt.Fprintf(out, "INSERT INTO municipalities (id, code, name, department, is_active, created_at)\n")
		fmt.Fprintf(out, "VALUES (gen_random_uuid(), '%s', '%s', '%s', false, now())\n",
			m.code, escapeSQL(m.name), escapeSQL(m.department))
		out.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, department = EXCLUDED.department;\n")
	}

	fmt.Printf("Generado %s: %d municipios\n", outPath, len(munis))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
