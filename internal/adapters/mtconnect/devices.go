package mtconnect

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// DevicesNamespacePrefix is shared by every MTConnectDevices schema version.
const DevicesNamespacePrefix = "urn:mtconnect.org:MTConnectDevices"

type devicesDocument struct {
	XMLName xml.Name
	Devices []xmlDevice `xml:"Devices>Device"`
}

type xmlDevice struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	UUID string `xml:"uuid,attr"`
	xmlComponent
}

type xmlDescription struct {
	Manufacturer string `xml:"manufacturer,attr"`
	Model        string `xml:"model,attr"`
	Text         string `xml:",chardata"`
}

type xmlComponent struct {
	Description *xmlDescription `xml:"Description"`
	DataItems   []xmlDataItem   `xml:"DataItems>DataItem"`
	Components  *xmlComponents  `xml:"Components"`
}

// Components holds arbitrarily named children (Axes, Controller, Linear...).
type xmlComponents struct {
	Items []xmlComponent `xml:",any"`
}

type xmlDataItem struct {
	Category string `xml:"category,attr"`
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Type     string `xml:"type,attr"`
}

// ParseDevices decodes a probe document.
func ParseDevices(data []byte) (*domain.Catalog, error) {
	var doc devicesDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode probe: %w", err)
	}
	return doc.catalog()
}

func (d *devicesDocument) catalog() (*domain.Catalog, error) {
	if !strings.HasPrefix(d.XMLName.Space, DevicesNamespacePrefix) {
		return nil, fmt.Errorf("%w: %q", ports.ErrWrongNamespace, d.XMLName.Space)
	}

	cat := &domain.Catalog{}
	for _, dev := range d.Devices {
		desc := dev.findDescription()
		if desc == nil {
			continue
		}
		cat.Devices = append(cat.Devices, domain.Device{
			DeviceID:     dev.ID,
			DeviceName:   dev.Name,
			DeviceUUID:   dev.UUID,
			Manufacturer: desc.Manufacturer,
			Model:        desc.Model,
			Description:  strings.TrimSpace(desc.Text),
		})
		cat.DataItems = dev.collectDataItems(dev.UUID, cat.DataItems)
	}
	return cat, nil
}

// findDescription returns the first Description at or below c, depth first.
// Agents that describe only a controller still identify the device.
func (c *xmlComponent) findDescription() *xmlDescription {
	if c.Description != nil {
		return c.Description
	}
	if c.Components == nil {
		return nil
	}
	for i := range c.Components.Items {
		if d := c.Components.Items[i].findDescription(); d != nil {
			return d
		}
	}
	return nil
}

// collectDataItems walks the component tree depth first, in document order.
func (c *xmlComponent) collectDataItems(deviceUUID string, out []domain.DataItem) []domain.DataItem {
	for _, di := range c.DataItems {
		out = append(out, domain.DataItem{
			Category:   di.Category,
			ID:         di.ID,
			DeviceUUID: deviceUUID,
			Name:       di.Name,
			Type:       di.Type,
		})
	}
	if c.Components == nil {
		return out
	}
	for i := range c.Components.Items {
		out = c.Components.Items[i].collectDataItems(deviceUUID, out)
	}
	return out
}
