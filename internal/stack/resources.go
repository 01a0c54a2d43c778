package stack

// Logical IDs of the hosting resources.
const (
	BucketID       = "SiteBucket"
	BucketPolicyID = "SiteBucketPolicy"
	DistributionID = "SiteDistribution"
	RecordID       = "SiteAliasRecord"
)

// cloudFrontZoneID is the fixed hosted zone every CloudFront alias targets.
const cloudFrontZoneID = "Z2FDTNDATAQYW2"

func ref(id string) map[string]interface{} {
	return map[string]interface{}{"Ref": id}
}

func getAtt(id, attr string) map[string]interface{} {
	return map[string]interface{}{"Fn::GetAtt": []interface{}{id, attr}}
}

func (s *Stack) add(r Resource) {
	s.Resources = append(s.Resources, r)
}

// addBucket declares a public website bucket serving the generated site.
func (s *Stack) addBucket() {
	s.add(Resource{
		LogicalID: BucketID,
		Kind:      KindBucket,
		Properties: map[string]interface{}{
			"WebsiteConfiguration": map[string]interface{}{
				"IndexDocument": "index.html",
				"ErrorDocument": "404.html",
			},
			"PublicAccessBlockConfiguration": map[string]interface{}{
				"BlockPublicAcls":       true,
				"BlockPublicPolicy":     false,
				"IgnorePublicAcls":      true,
				"RestrictPublicBuckets": false,
			},
		},
	})
	s.add(Resource{
		LogicalID: BucketPolicyID,
		Kind:      KindBucketPolicy,
		Properties: map[string]interface{}{
			"Bucket": ref(BucketID),
			"PolicyDocument": map[string]interface{}{
				"Version": "2012-10-17",
				"Statement": []interface{}{
					map[string]interface{}{
						"Effect":    "Allow",
						"Principal": "*",
						"Action":    "s3:GetObject",
						"Resource": map[string]interface{}{
							"Fn::Join": []interface{}{"", []interface{}{getAtt(BucketID, "Arn"), "/*"}},
						},
					},
				},
			},
		},
	})
	s.Outputs["BucketName"] = Output{Description: "Upload the built site here", Value: ref(BucketID)}
	s.Outputs["WebsiteURL"] = Output{Value: getAtt(BucketID, "WebsiteURL")}
}

// addDistribution fronts the website bucket with a CDN.
func (s *Stack) addDistribution() {
	s.add(Resource{
		LogicalID: DistributionID,
		Kind:      KindDistribution,
		Properties: map[string]interface{}{
			"DistributionConfig": map[string]interface{}{
				"Enabled":           true,
				"DefaultRootObject": "index.html",
				"HttpVersion":       "http2",
				"Origins": []interface{}{
					map[string]interface{}{
						"Id": "site-origin",
						"DomainName": map[string]interface{}{
							"Fn::Select": []interface{}{2, map[string]interface{}{
								"Fn::Split": []interface{}{"/", getAtt(BucketID, "WebsiteURL")},
							}},
						},
						"CustomOriginConfig": map[string]interface{}{
							"OriginProtocolPolicy": "http-only",
						},
					},
				},
				"DefaultCacheBehavior": map[string]interface{}{
					"TargetOriginId":       "site-origin",
					"ViewerProtocolPolicy": "redirect-to-https",
					"Compress":             true,
					"ForwardedValues": map[string]interface{}{
						"QueryString": false,
					},
				},
				"CustomErrorResponses": []interface{}{
					map[string]interface{}{
						"ErrorCode":        404,
						"ResponseCode":     404,
						"ResponsePagePath": "/404.html",
					},
				},
			},
		},
	})
	s.Outputs["DistributionDomain"] = Output{Value: getAtt(DistributionID, "DomainName")}
}

// addRecord points domain at the CDN.
func (s *Stack) addRecord(domain, hostedZoneID string) {
	s.add(Resource{
		LogicalID: RecordID,
		Kind:      KindRecordSet,
		Properties: map[string]interface{}{
			"HostedZoneId": hostedZoneID,
			"Name":         domain,
			"Type":         "A",
			"AliasTarget": map[string]interface{}{
				"DNSName":      getAtt(DistributionID, "DomainName"),
				"HostedZoneId": cloudFrontZoneID,
			},
		},
	})
}
