package mtconnect

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// StreamsNamespacePrefix is shared by every MTConnectStreams schema version.
const StreamsNamespacePrefix = "urn:mtconnect.org:MTConnectStreams"

type streamsDocument struct {
	XMLName       xml.Name
	Header        xmlHeader         `xml:"Header"`
	DeviceStreams []xmlDeviceStream `xml:"Streams>DeviceStream"`
}

type xmlHeader struct {
	NextSequence string `xml:"nextSequence,attr"`
}

type xmlDeviceStream struct {
	Name             string               `xml:"name,attr"`
	UUID             string               `xml:"uuid,attr"`
	ComponentStreams []xmlComponentStream `xml:"ComponentStream"`
}

type xmlComponentStream struct {
	Samples []xmlSamples `xml:"Samples"`
}

type xmlSamples struct {
	Elements []xmlObservation `xml:",any"`
}

// xmlObservation is any child of Samples. XMLName carries the namespace and
// local name separately, so vendor-prefixed kinds decode to their bare name.
type xmlObservation struct {
	XMLName    xml.Name
	DataItemID string `xml:"dataItemId,attr"`
	Timestamp  string `xml:"timestamp,attr"`
	Value      string `xml:",chardata"`
}

// ParseStreams decodes a current or sample document.
func ParseStreams(data []byte) (*domain.Snapshot, error) {
	var doc streamsDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode streams: %w", err)
	}
	return doc.snapshot()
}

func (d *streamsDocument) snapshot() (*domain.Snapshot, error) {
	if !strings.HasPrefix(d.XMLName.Space, StreamsNamespacePrefix) {
		return nil, fmt.Errorf("%w: %q", ports.ErrWrongNamespace, d.XMLName.Space)
	}
	if d.Header.NextSequence == "" {
		return nil, ports.ErrMissingCursor
	}

	snap := &domain.Snapshot{NextSequence: domain.Cursor(d.Header.NextSequence)}
	for _, ds := range d.DeviceStreams {
		for _, cs := range ds.ComponentStreams {
			for _, block := range cs.Samples {
				for _, el := range block.Elements {
					snap.Observations = append(snap.Observations, domain.Observation{
						Kind:       el.XMLName.Local,
						DataItemID: el.DataItemID,
						Timestamp:  el.Timestamp,
						Value:      el.Value,
					})
				}
			}
		}
	}
	return snap, nil
}
